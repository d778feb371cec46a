package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWarehouse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Виртуальный Тула", "Тула"},
		{"СЦ Пермь", "Пермь"},
		{"Коледино WB", "Коледино"},
		{"Симферополь, Молодежненское", "Симферополь (Молодежненское)"},
		{"Тула Сталелитейная", "Тула"},
		{"Виртуальный СЦ Омск", "Омск"},
		{"Казань", "Казань"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWarehouse(tt.in), "input %q", tt.in)
	}
}
