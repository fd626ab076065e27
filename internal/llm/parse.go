package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ntorreslo/ndf-letters/internal/common"
)

// ParseResponse extracts the single JSON object from free-form model output.
// The model is told to answer with JSON only, but smaller models still wrap
// the object in prose, so we take the first balanced {...} span and discard
// the rest. Never panics; every failure mode maps to a taxonomy error.
func ParseResponse(response string) Outcome {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return Outcome{Err: common.NewAppError("PARSE_ERROR", "model returned nothing", common.ErrEmptyResponse)}
	}

	span, ok := firstJSONSpan(trimmed)
	if !ok {
		return Outcome{Err: common.NewAppError("PARSE_ERROR", "no {...} span in response", common.ErrNoJSON)}
	}

	// UseNumber keeps the model's digits verbatim: a float64 round trip would
	// turn 4236.20 into "4236.2" and drop the cents digit the ledger expects.
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Outcome{Err: common.NewAppError("PARSE_ERROR", err.Error(), common.ErrMalformedJSON)}
	}

	fields := ContractFields{
		TasaFwd:         coerceRate(m["tasa_fwd"]),
		ValorNominalUSD: coerceNominal(m["valor_nominal_usd"]),
		FechaInicio:     coerceDate(m["fecha_inicio"]),
	}
	return Outcome{Fields: fields, Warnings: ValidateFields(fields)}
}

// firstJSONSpan returns the first balanced top-level {...} span, tracking
// string literals so braces inside values don't unbalance the scan.
func firstJSONSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// coerceRate canonicalizes the forward rate to comma-decimal form. The model
// is instructed to keep the comma separator but its own format example uses a
// dot, so both arrive in practice.
func coerceRate(v any) *string {
	switch t := v.(type) {
	case json.Number:
		s := strings.Replace(t.String(), ".", ",", 1)
		return &s
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		if strings.Contains(s, ".") && !strings.Contains(s, ",") {
			s = strings.Replace(s, ".", ",", 1)
		}
		return &s
	default:
		return nil
	}
}

// coerceNominal canonicalizes the notional to a bare integer string.
func coerceNominal(v any) *string {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			s := strconv.FormatInt(n, 10)
			return &s
		}
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		s := fmt.Sprintf("%.0f", f)
		return &s
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		return &s
	default:
		return nil
	}
}

func coerceDate(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}
