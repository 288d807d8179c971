package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/config"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/messaging"
)

type reconcileFlags struct {
	sales     []string
	registry  string
	scheme    string
	rate      string
	unitPrice string
	sort      string
	dir       string
	links     bool
	pin       string
}

func reconcileCommand(app *cli) *cobra.Command {
	f := &reconcileFlags{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compute cashback for every registered buyer",
		Example: `  cashback reconcile --sales jan.csv --sales fev.csv --registry cadastro.csv
  cashback reconcile --sales vendas.csv --registry cadastro.csv --rate 0,05 --sort name
  ACCESS_PIN=3040 cashback reconcile --sales vendas.csv --registry cadastro.csv --links --pin 3040`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), app, f, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&f.sales, "sales", nil, "sales export (repeat for several months)")
	cmd.Flags().StringVar(&f.registry, "registry", "", "customer registry export")
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "cashback scheme from CASHBACK_SCHEMES_FILE")
	cmd.Flags().StringVar(&f.rate, "rate", "", "cashback rate as a fraction, e.g. 0,10")
	cmd.Flags().StringVar(&f.unitPrice, "unit-price", "", "value of one reward unit; 0 disables units")
	cmd.Flags().StringVar(&f.sort, "sort", "", "ranking column: cashback, total_spent or name")
	cmd.Flags().StringVar(&f.dir, "dir", "", "ranking direction: asc or desc")
	cmd.Flags().BoolVar(&f.links, "links", false, "also print WhatsApp invitation links")
	cmd.Flags().StringVar(&f.pin, "pin", "", "access PIN, required with --links")
	_ = cmd.MarkFlagRequired("sales")
	_ = cmd.MarkFlagRequired("registry")

	return cmd
}

func runReconcile(ctx context.Context, app *cli, f *reconcileFlags, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Check the PIN before doing any work.
	if f.links {
		if err := config.CheckPIN(f.pin, os.Getenv("ACCESS_PIN")); err != nil {
			return userError(err)
		}
	}

	cashback, err := config.LoadCashback()
	if err != nil {
		return err
	}
	schemes, err := config.LoadSchemes(cashback)
	if err != nil {
		return err
	}
	scheme, err := schemes.Get(f.scheme)
	if err != nil {
		return userError(err)
	}
	scheme, err = scheme.Apply(config.Overrides{
		Rate:      f.rate,
		UnitPrice: f.unitPrice,
		Sort:      f.sort,
		Dir:       f.dir,
	})
	if err != nil {
		return userError(err)
	}

	in := core.RunInput{Options: scheme.Options}
	for _, path := range f.sales {
		up, err := readFile(path)
		if err != nil {
			return err
		}
		in.Sales = append(in.Sales, up)
	}
	if in.Registry, err = readFile(f.registry); err != nil {
		return err
	}

	service, err := core.NewService(0)
	if err != nil {
		return err
	}
	result, err := service.Run(ctx, in)
	if err != nil {
		app.logger.Debug("run failed", "error", err)
		return userError(err)
	}

	if err := writeReport(out, result, scheme.Options); err != nil {
		return err
	}
	if f.links {
		return writeLinks(out, messaging.Compose(result.Balances, scheme.Template))
	}
	return nil
}

// userError wraps err with its mapped message; main prints both.
func userError(err error) error {
	return core.NewUserError(err)
}

func readFile(path string) (core.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return core.Upload{Name: filepath.Base(path), Data: data}, nil
}

// writeReport prints the run summary and the ranked table.
func writeReport(out io.Writer, result *core.Result, opts core.Options) error {
	st := result.Stats
	fmt.Fprintf(out, "Arquivos de vendas: %d | Vendas: %d | Duplicadas removidas: %d | Cadastros: %d | Clientes: %d\n\n",
		st.SalesFiles, st.SalesRows, st.DuplicatesRemoved, st.RegistryRows, st.Customers)

	if len(result.Balances) == 0 {
		_, err := fmt.Fprintln(out, "Nenhum cliente com cashback encontrado.")
		return err
	}

	showUnits := opts.UnitPrice.IsPositive()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "#\tCliente\tTelefone\tTotal Gasto\tCashback\tCompras"
	if showUnits {
		header += "\tUnidades"
	}
	fmt.Fprintln(tw, header)

	for i, b := range result.Balances {
		phone := string(b.Phone)
		if phone == "" {
			phone = "-"
		}
		line := fmt.Sprintf("%d\t%s\t%s\tR$ %s\tR$ %s\t%d",
			i+1, b.DisplayName, phone,
			messaging.FormatAmount(b.TotalSpent), messaging.FormatAmount(b.Cashback), b.Purchases)
		if showUnits {
			line += "\t" + b.RewardUnits.String()
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nTotal de cashback: R$ %s\n", messaging.FormatAmount(core.TotalCashback(result.Balances)))
	return err
}

// writeLinks prints one line per invitation, warnings first.
func writeLinks(out io.Writer, invites []messaging.Invite) error {
	usable, unreachable := messaging.Split(invites)
	fmt.Fprintf(out, "\nLinks de envio (%d)\n", len(invites))
	for _, inv := range unreachable {
		fmt.Fprintf(out, "🚫 %s: Telefone não cadastrado ou inválido (Cashback: R$ %s)\n", inv.Name, inv.Cashback)
	}
	for _, inv := range usable {
		if _, err := fmt.Fprintf(out, "📲 %s (R$ %s): %s\n", inv.Name, inv.Cashback, inv.Link); err != nil {
			return err
		}
	}
	return nil
}
