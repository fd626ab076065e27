package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Rate bounds from the field definition handed to the model: COP/USD forwards
// trade in this band, anything outside it is suspect but not impossible.
const (
	typicalRateMin = 3000
	typicalRateMax = 5000
)

// buildFieldsSchema describes the canonical field formats. Checked after
// parsing because the prompt's format rules are advisory to the model, not
// enforceable.
func buildFieldsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tasa_fwd":          map[string]any{"type": "string", "pattern": `^\d+(,\d+)?$`},
			"valor_nominal_usd": map[string]any{"type": "string", "pattern": `^\d+$`},
			"fecha_inicio":      map[string]any{"type": "string", "pattern": `^\d{2}/\d{2}/\d{4}$`},
		},
	}
}

// ValidateFields applies the format rules to the present fields and returns
// advisory warnings. Out-of-policy values are flagged, never rejected: the
// extraction is best-effort against noisy scans and a flagged row beats a
// blocked batch.
func ValidateFields(f ContractFields) []string {
	var warnings []string

	doc := map[string]any{}
	if f.TasaFwd != nil {
		doc["tasa_fwd"] = *f.TasaFwd
	}
	if f.ValorNominalUSD != nil {
		doc["valor_nominal_usd"] = *f.ValorNominalUSD
	}
	if f.FechaInicio != nil {
		doc["fecha_inicio"] = *f.FechaInicio
	}
	if len(doc) == 0 {
		return nil
	}

	if err := validateAgainstSchema(buildFieldsSchema(), doc); err != nil {
		warnings = append(warnings, err.Error())
	}

	if f.TasaFwd != nil {
		if rate, err := strconv.ParseFloat(strings.Replace(*f.TasaFwd, ",", ".", 1), 64); err == nil {
			if rate < typicalRateMin || rate > typicalRateMax {
				warnings = append(warnings,
					fmt.Sprintf("tasa_fwd %s outside typical %d-%d range", *f.TasaFwd, typicalRateMin, typicalRateMax))
			}
		}
	}
	return warnings
}

// validateAgainstSchema validates "doc" against "schemaMap".
func validateAgainstSchema(schemaMap map[string]any, doc any) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("fields do not match format rules: %w", err)
	}
	return nil
}
