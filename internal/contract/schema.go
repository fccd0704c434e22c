// Package contract pins the shape of the boundary record handed to
// persistence and export collaborators, and validates serialized documents
// against it.
package contract

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the parsed-invoice record. Optional fields signal
// "not extracted" by absence, never null.
func BuildInvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"vendor", "metadata", "items", "totals", "validation"},
		"properties": map[string]any{
			"vendor": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"name", "confidence"},
				"properties": map[string]any{
					"name":       map[string]any{"type": "string"},
					"confidence": confidenceProp(),
				},
			},
			"metadata": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"invoice_no":   map[string]any{"type": "string", "minLength": 1},
					"date":         map[string]any{"type": "string"},
					"due_date":     map[string]any{"type": "string"},
					"po_number":    map[string]any{"type": "string"},
					"total_amount": map[string]any{"type": "number"},
				},
			},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"description", "quantity", "unit_price", "total"},
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"quantity":    map[string]any{"type": "integer", "minimum": 1},
						"unit_price":  map[string]any{"type": "number", "minimum": 0},
						"total":       map[string]any{"type": "number", "minimum": 0},
					},
				},
			},
			"totals": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"subtotal": map[string]any{"type": "number"},
					"tax":      map[string]any{"type": "number"},
					"shipping": map[string]any{"type": "number"},
					"discount": map[string]any{"type": "number"},
					"total":    map[string]any{"type": "number"},
				},
			},
			"validation": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"overall_confidence", "warnings", "status"},
				"properties": map[string]any{
					"overall_confidence": confidenceProp(),
					"warnings": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"status": map[string]any{
						"type": "string",
						"enum": []any{
							"Pending Review",
							"Auto-Approved",
							"Needs Review",
							"Manual Processing Required",
						},
					},
				},
			},
		},
	}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
