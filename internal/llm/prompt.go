package llm

import "strings"

// The instruction block is part of the wire contract with the model: the
// parser downstream assumes the field names and format rules stated here,
// so edits to this text must be mirrored in parse.go and validate.go.
const promptHeader = `Eres un experto en análisis de contratos financieros en inglés y español con experiencia en extracción de datos estructurados.

OBJETIVO: Extraer información específica de contratos forward y presentarla en formato JSON.

CAMPOS A EXTRAER:
1. tasa_fwd: Tasa Forward (número decimal)
2. valor_nominal_usd: Valor nominal en USD (número entero)
3. fecha_inicio: Fecha de inicio/negociación (formato dd/mm/aaaa)

DEFINICIONES ESPECÍFICAS:

tasa_fwd:
- Es la tasa de cambio forward/strike del contrato
- NO confundir con el valor total en COP
- Buscar valores típicos entre 3000-5000 para COP/USD
- Puede aparecer como "Tasa", "Strike", "Rate", "Forward Rate"

valor_nominal_usd:
- Es el monto nocional/principal en dólares estadounidenses
- SIEMPRE acompañado de "USD" o indicado en columna de moneda USD
- NO es el equivalente en COP (que será mucho mayor)
- Buscar valores como "1,000,000.00 USD", "2,500,000 USD"
- IGNORAR valores en COP (que son resultado de multiplicar tasa x nominal)

fecha_inicio:
- Fecha de negociación o trade date
- Puede aparecer como "Trade Date", "Fecha Negociación", "Deal Date"

REGLAS DE FORMATO CRÍTICAS:
- tasa_fwd: ELIMINAR puntos de miles, mantener coma decimal
  Correcto: 4236,20
  Incorrecto: 4.236,20

- valor_nominal_usd: SOLO números enteros, sin separadores
  Correcto: 2000000
  Incorrecto: 2,000,000 o 2.000.000

- fecha_inicio: Formato estricto dd/mm/aaaa
  Correcto: 15/03/2024
  Incorrecto: 15-03-2024 o 2024/03/15 o 15 de mayo de 2024 o March 15th 2024 o March 15, 2024 o 15-Mar-2024

EJEMPLOS DE TRANSFORMACIÓN:
- "4.236,20" → 4236,20
- "2,000,000.00 USD" → 2000000
- "March 15, 2024" → 15/03/2024

INSTRUCCIONES DE SALIDA:
- Responde ÚNICAMENTE con JSON válido
- No incluyas explicaciones, comentarios o texto adicional
- Si un campo no se encuentra, usa null
- Mantén exactamente estos nombres de campo

FORMATO DE RESPUESTA ESPERADO:
{
  "tasa_fwd": 4236.20,
  "valor_nominal_usd": 2000000,
  "fecha_inicio": "15/03/2024"
}

TEXTO DEL CONTRATO A ANALIZAR:
---
`

const promptFooter = `
---
Procede con la extracción:`

// DefaultMaxPromptChars bounds the normalized text embedded in the prompt so
// a multi-page scan cannot blow the inference context window.
const DefaultMaxPromptChars = 12000

// BuildPrompt assembles the extraction instruction around the normalized
// contract text. Deterministic given its input.
func BuildPrompt(normalizedText string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}
	if len(normalizedText) > maxChars {
		normalizedText = normalizedText[:maxChars]
	}

	var b strings.Builder
	b.Grow(len(promptHeader) + len(normalizedText) + len(promptFooter))
	b.WriteString(promptHeader)
	b.WriteString(normalizedText)
	b.WriteString(promptFooter)
	return b.String()
}
