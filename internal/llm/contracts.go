package llm

import "context"

// ContractFields is the normalized shape we want from the model. All three
// are nullable: a nil pointer means the field was absent from the letter,
// which is valid and distinct from a parse failure.
type ContractFields struct {
	TasaFwd         *string `json:"tasa_fwd"`          // decimal, comma separator, no thousands marks
	ValorNominalUSD *string `json:"valor_nominal_usd"` // non-negative integer, no separators
	FechaInicio     *string `json:"fecha_inicio"`      // dd/mm/yyyy
}

// Outcome is the per-document extraction result. Exactly one of Fields or
// Err holds; Warnings carry advisory format findings on successes.
type Outcome struct {
	Fields   ContractFields
	Warnings []string
	Err      error
}

// Failed reports whether the outcome is an error descriptor.
func (o Outcome) Failed() bool { return o.Err != nil }

// ResponseGenerator is the inference endpoint our pipeline depends on.
type ResponseGenerator interface {
	// WarmUp forces the model into memory before the batch starts.
	// Best-effort: probe failures are logged, never surfaced.
	WarmUp(ctx context.Context)
	// Generate sends a prompt and returns the raw response text.
	Generate(ctx context.Context, prompt string) (string, error)
}
