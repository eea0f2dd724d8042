package wizard

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

type MockStepsClient struct {
	GetStepFunc func(ctx context.Context, id int) (*client.Step, error)
}

func (m *MockStepsClient) GetStep(ctx context.Context, id int) (*client.Step, error) {
	return m.GetStepFunc(ctx, id)
}

func boolPtr(b bool) *bool { return &b }

// triageGraph is a small questionnaire:
//
//	1 province -> 2 city -> 3 risk question -> 4 weight question -> 9 result
//	                                     \-> 5 diagnosis question -> 9
func triageGraph() map[int]*client.Step {
	return map[int]*client.Step{
		1: {ID: 1, Code: client.CodeProvince, Title: "Provincia", NextStepID: 2},
		2: {ID: 2, Code: client.CodeCity, Title: "Ciudad", NextStepID: 3},
		3: {ID: 3, Code: client.CodeQuestion, Title: "¿Grupo de riesgo?", Options: []client.Option{
			{ID: 31, Label: "SÍ, es Grupo de Riesgo", NextStepID: 4, Value: "si", RiskFlag: boolPtr(true)},
			{ID: 32, Label: "No", NextStepID: 5, Value: "no"},
		}},
		4: {ID: 4, Code: client.CodeQuestion, Title: "Peso", Options: []client.Option{
			{ID: 41, Label: "30 a 34 kg", NextStepID: 9},
			{ID: 42, Label: "55 kg o más", NextStepID: 9},
		}},
		5: {ID: 5, Code: "STEP_QUESTION_DIAGNOSIS", Title: "Diagnóstico", Options: []client.Option{
			{ID: 51, Label: "Tuberculosis Pulmonar", NextStepID: 9},
		}},
		9: {ID: 9, Code: client.CodeResult, Title: "Protocolo: PRIORIZADO", Variant: 3, IsEnd: true},
	}
}

func graphClient(graph map[int]*client.Step) *MockStepsClient {
	return &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		step, ok := graph[id]
		if !ok {
			return nil, errors.NotFound("step")
		}
		copied := *step
		return &copied, nil
	}}
}
