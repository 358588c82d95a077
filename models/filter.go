package models

import "fmt"

/* Filter clauses arrive in the shape existing clients already send:
 *
 *	{"filters": [
 *		{"filtro": "id", "condicao": "==", "valorprocurado": 1721951931465},
 *		{"filtro": "nome", "condicao": "indexOf", "valorprocurado": "atualizado"}
 *	]}
 *
 * The field, op and value keys are accepted as aliases.
 */

// ---------------------------

type FilterRequest struct {
	Filters []FilterClause `json:"filters" binding:"max=100,dive"`
}

func (r FilterRequest) Validate() error {
	if len(r.Filters) > 100 {
		return fmt.Errorf("filters exceed maximum of 100")
	}
	for i, clause := range r.Filters {
		if err := clause.Validate(); err != nil {
			return fmt.Errorf("filters[%d] validation failed: %w", i, err)
		}
	}
	return nil
}

type FilterClause struct {
	Filtro         string `json:"filtro"`
	Condicao       string `json:"condicao"`
	ValorProcurado any    `json:"valorprocurado"`
	// ---------------------------
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Normalised returns field, operator and expected value, preferring the
// Portuguese keys over the English aliases.
func (c FilterClause) Normalised() (field, op string, expected any) {
	if c.Filtro != "" || c.Condicao != "" {
		return c.Filtro, c.Condicao, c.ValorProcurado
	}
	return c.Field, c.Op, c.Value
}

func (c FilterClause) Validate() error {
	field, _, _ := c.Normalised()
	if len(field) == 0 {
		return fmt.Errorf("filter field cannot be empty")
	}
	return nil
}
