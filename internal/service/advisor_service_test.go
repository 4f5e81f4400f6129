package service

import (
	"testing"

	"restaurant-advisor-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEdgeRivalsAcceptsNumericProperty(t *testing.T) {
	svc := &advisorService{log: &captureLogger{}}

	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{name: "jsonb float", value: float64(7), want: 7},
		{name: "seeded int", value: 3, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge := &entity.GraphEdge{
				Id:         uuid.New(),
				Properties: map[string]interface{}{"rivals": tt.value},
			}
			rivals, ok := svc.edgeRivals(edge)
			assert.True(t, ok)
			assert.Equal(t, tt.want, rivals)
		})
	}
}

func TestEdgeRivalsSkipsUnusableProperty(t *testing.T) {
	// An edge without a numeric rival count must not pass as rivals=0, or
	// every malformed edge would surface as an uncontested market gap.
	log := &captureLogger{}
	svc := &advisorService{log: log}

	edges := []*entity.GraphEdge{
		{Id: uuid.New(), Properties: nil},
		{Id: uuid.New(), Properties: map[string]interface{}{}},
		{Id: uuid.New(), Properties: map[string]interface{}{"rivals": "many"}},
	}

	for _, edge := range edges {
		_, ok := svc.edgeRivals(edge)
		assert.False(t, ok)
	}
	assert.Len(t, log.entries, len(edges))
	for _, entry := range log.entries {
		assert.Equal(t, "warn", entry.level)
	}
}
