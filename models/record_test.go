package models_test

import (
	"encoding/json"
	"testing"

	"github.com/alyssonw2/BD-AJ/models"
	"github.com/stretchr/testify/require"
)

func TestRecord_Id(t *testing.T) {
	// ---------------------------
	tests := []struct {
		name   string
		record models.Record
		id     int64
		ok     bool
	}{
		{"int64", models.Record{"id": int64(1721951931465)}, 1721951931465, true},
		{"int", models.Record{"id": 42}, 42, true},
		{"float64 from disk", models.Record{"id": float64(1721951931465)}, 1721951931465, true},
		{"json number", models.Record{"id": json.Number("7")}, 7, true},
		{"fractional", models.Record{"id": 1.5}, 0, false},
		{"string", models.Record{"id": "42"}, 0, false},
		{"missing", models.Record{"name": "gandalf"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.record.Id()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.id, id)
		})
	}
}

func TestRecord_Merge(t *testing.T) {
	original := models.Record{"id": int64(1), "name": "gandalf", "colour": "grey"}
	merged := original.Merge(models.Record{"colour": "white", "staff": true, "id": int64(99)})
	require.Equal(t, models.Record{"id": int64(1), "name": "gandalf", "colour": "white", "staff": true}, merged)
	// The original is left untouched
	require.Equal(t, "grey", original["colour"])
}

func TestFilterRequest_Validate(t *testing.T) {
	req := models.FilterRequest{Filters: []models.FilterClause{
		{Filtro: "nome", Condicao: "indexOf", ValorProcurado: "atual"},
		{Field: "id", Op: "==", Value: 1.0},
	}}
	require.NoError(t, req.Validate())
	field, op, value := req.Filters[1].Normalised()
	require.Equal(t, "id", field)
	require.Equal(t, "==", op)
	require.Equal(t, 1.0, value)
	// ---------------------------
	req.Filters = append(req.Filters, models.FilterClause{Condicao: "=="})
	require.Error(t, req.Validate())
}
