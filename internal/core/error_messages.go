package core

// # Error Codes Reference
//
// This file defines user-facing messages with codes for support reference.
// Operators can quote the code when a run is blocked.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large            Patterns: "file too large"
//	FILE002 - Invalid CSV               Patterns: "invalid csv"
//	FILE003 - Encoding error            Patterns: "encoding error"
//	FILE004 - No file                   Patterns: "no file provided"
//	FILE005 - Empty file                Patterns: "empty file"
//	FILE006 - Header not found          Patterns: "header not found"
//	FILE007 - Table unavailable         Patterns: "table unavailable"
//	FILE008 - Too many files            Patterns: "too many files"
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Required column missing    Patterns: "missing required column"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid sort               Patterns: "invalid sort"
//	CFG002 - Invalid cashback setting   Patterns: "invalid rate", "invalid unit price"
//	CFG003 - Unknown scheme             Patterns: "unknown scheme"
//	CFG004 - Unknown source             Patterns: "unknown source"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy                Patterns: "too many concurrent runs"
//	RUN002 - Request cancelled          Patterns: "context canceled"
//	RUN003 - Request timeout            Patterns: "context deadline exceeded"
//	RUN004 - Nothing to send            Patterns: "no reconciliation", "session not found"
//	RUN005 - Bad selection              Patterns: "invalid selection"
//	RUN006 - Empty selection            Patterns: "no customer selected"
//
// # Access Errors (AUTH001-AUTH099)
//
//	AUTH001 - Wrong PIN                 Patterns: "invalid pin"
//	AUTH002 - Missing PIN               Patterns: "missing pin"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Arquivo maior que o limite permitido",
			Action:  "Exporte um período menor e envie novamente",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "O arquivo não é um CSV válido",
			Action:  "Exporte o relatório novamente em CSV ou TXT",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "O arquivo contém caracteres ilegíveis",
			Action:  "Salve o relatório como CSV (separado por ponto e vírgula)",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Nenhum arquivo foi selecionado",
			Action:  "Envie o relatório de vendas e o relatório de cadastro",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "O arquivo enviado está vazio",
			Action:  "Confira se o relatório foi exportado com dados",
			Code:    "FILE005",
		},
	},
	{
		pattern: "header not found",
		msg: UserMessage{
			Message: "Cabeçalho do relatório não encontrado",
			Action:  "Confira se enviou o relatório certo em cada campo",
			Code:    "FILE006",
		},
	},
	{
		pattern: "table unavailable",
		msg: UserMessage{
			Message: "Um dos relatórios não pôde ser lido",
			Action:  "Envie os dois relatórios novamente",
			Code:    "FILE007",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Arquivos de vendas demais em um só processamento",
			Action:  "Envie menos meses de cada vez",
			Code:    "FILE008",
		},
	},

	// Column errors
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Colunas essenciais não encontradas",
			Action:  "Vendas precisa de Usuário e Total Venda; cadastro precisa de Nome",
			Code:    "COL001",
		},
	},

	// Configuration errors
	{
		pattern: "invalid sort",
		msg: UserMessage{
			Message: "Ordenação inválida",
			Action:  "Use cashback, total_spent ou name",
			Code:    "CFG001",
		},
	},
	{
		pattern: "invalid rate",
		msg: UserMessage{
			Message: "Percentual de cashback inválido",
			Action:  "Informe um número entre 0 e 1, por exemplo 0,10",
			Code:    "CFG002",
		},
	},
	{
		pattern: "invalid unit price",
		msg: UserMessage{
			Message: "Valor do serviço inválido",
			Action:  "Informe um valor positivo ou deixe em branco",
			Code:    "CFG002",
		},
	},
	{
		pattern: "unknown scheme",
		msg: UserMessage{
			Message: "Esquema de cashback desconhecido",
			Action:  "Escolha um dos esquemas configurados",
			Code:    "CFG003",
		},
	},
	{
		pattern: "unknown source",
		msg: UserMessage{
			Message: "Tipo de relatório não configurado",
			Action:  "Contate o suporte",
			Code:    "CFG004",
		},
	},

	// Run errors
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "Sistema ocupado processando outros relatórios",
			Action:  "Aguarde alguns segundos e tente novamente",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "A requisição foi cancelada",
			Action:  "Tente novamente",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "O processamento demorou demais",
			Action:  "Envie arquivos menores ou tente novamente",
			Code:    "RUN003",
		},
	},
	{
		pattern: "no reconciliation",
		msg: UserMessage{
			Message: "Nenhum resultado para enviar",
			Action:  "Processe os relatórios antes de gerar os links",
			Code:    "RUN004",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Nenhum resultado para enviar",
			Action:  "Processe os relatórios antes de gerar os links",
			Code:    "RUN004",
		},
	},
	{
		pattern: "invalid selection",
		msg: UserMessage{
			Message: "Linha da lista não encontrada",
			Action:  "Recarregue a lista e tente novamente",
			Code:    "RUN005",
		},
	},
	{
		pattern: "no customer selected",
		msg: UserMessage{
			Message: "Nenhum cliente selecionado",
			Action:  "Marque ao menos um cliente antes de gerar os links",
			Code:    "RUN006",
		},
	},

	// Access errors
	{
		pattern: "invalid pin",
		msg: UserMessage{
			Message: "PIN incorreto",
			Action:  "Digite o PIN de envio",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "missing pin",
		msg: UserMessage{
			Message: "PIN não informado",
			Action:  "Digite o PIN de envio",
			Code:    "AUTH002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Erro inesperado no processamento",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A *ColumnError additionally names the semantic column that is missing.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var colErr *ColumnError
	if errors.As(err, &colErr) {
		msg := columnMessage
		msg.Message = fmt.Sprintf("Coluna obrigatória não encontrada: %s (%s)",
			semanticLabel(colErr.Semantic), sourceLabel(colErr.Source))
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

var columnMessage = UserMessage{
	Action: "Vendas precisa de Usuário e Total Venda; cadastro precisa de Nome",
	Code:   "COL001",
}

func semanticLabel(semantic string) string {
	switch semantic {
	case SemanticBuyer:
		return "usuário/comprador"
	case SemanticAmount:
		return "valor da venda"
	case SemanticName:
		return "nome do cliente"
	case SemanticPhone:
		return "telefone"
	}
	return semantic
}

func sourceLabel(source string) string {
	switch source {
	case SourceSales:
		return "relatório de vendas"
	case SourceRegistry:
		return "relatório de cadastro"
	}
	return source
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return msg.String()
}

func (m UserMessage) String() string {
	return fmt.Sprintf("%s (Código: %s). %s", m.Message, m.Code, m.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.String()
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
