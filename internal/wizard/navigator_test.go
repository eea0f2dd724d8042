package wizard

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

func startedNavigator(t *testing.T, steps client.StepsClientInterface) *Navigator {
	t.Helper()
	n := NewNavigator(steps, Transitions{InitialStepID: 1})
	require.NoError(t, n.Start(context.Background()))
	return n
}

func TestNavigator_StartLoadsInitialStep(t *testing.T) {
	n := NewNavigator(graphClient(triageGraph()), Transitions{})
	assert.Equal(t, StatusLoading, n.Snapshot().Status)

	require.NoError(t, n.Start(context.Background()))

	snap := n.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, 1, snap.Step.ID)
	assert.Equal(t, KindProvince, snap.Kind)
	assert.False(t, snap.CanGoBack)
	assert.Empty(t, snap.Context.History)
}

func TestNavigator_FullPathBuildsHistoryAndAnswers(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()

	require.NoError(t, n.Next(ctx, 5))
	require.NoError(t, n.Next(ctx, 12))
	require.NoError(t, n.Next(ctx, 4))
	require.NoError(t, n.Next(ctx, 9))

	snap := n.Snapshot()
	assert.Equal(t, 9, snap.Step.ID)
	assert.Equal(t, KindResult, snap.Kind)
	assert.Equal(t, []int{1, 2, 3, 4}, snap.Context.History)
	assert.Equal(t, 5, *snap.Context.SelectedProvinceID)
	assert.Equal(t, 12, *snap.Context.SelectedCityID)
	assert.Equal(t, "SÍ, es Grupo de Riesgo", snap.Context.Answers[3].Label)
	assert.Equal(t, "si", snap.Context.Answers[3].Value)
	assert.Equal(t, "30 a 34 kg", snap.Context.Answers[4].Label)
	assert.Len(t, snap.Context.Answers, 2)
	assert.Equal(t, uint64(1), snap.Completion)
	assert.False(t, snap.CanGoBack)
}

func TestNavigator_HistoryHasNoDuplicates(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()

	require.NoError(t, n.Next(ctx, 5))
	require.NoError(t, n.Next(ctx, 12))
	require.NoError(t, n.Next(ctx, 4))
	require.NoError(t, n.Back(ctx))
	require.NoError(t, n.Next(ctx, 4))

	assert.Equal(t, []int{1, 2, 3}, n.Snapshot().Context.History)
}

func TestNavigator_BackKeepsEarlierAnswers(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()

	require.NoError(t, n.Next(ctx, 5))
	require.NoError(t, n.Next(ctx, 12))
	require.NoError(t, n.Next(ctx, 4))
	before := n.Snapshot().Context.Answers[3]

	require.NoError(t, n.Back(ctx))

	snap := n.Snapshot()
	assert.Equal(t, 3, snap.Step.ID)
	assert.Equal(t, "¿Grupo de riesgo?", snap.Step.Title)
	assert.Equal(t, []int{1, 2}, snap.Context.History)
	assert.Equal(t, before, snap.Context.Answers[3])
}

func TestNavigator_BackWithoutHistoryIsNoop(t *testing.T) {
	calls := 0
	graph := triageGraph()
	steps := &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		calls++
		return graph[id], nil
	}}
	n := startedNavigator(t, steps)

	require.NoError(t, n.Back(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, n.Snapshot().Step.ID)
	assert.Equal(t, StatusReady, n.Snapshot().Status)
}

func TestNavigator_TerminalNextResetsContext(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()

	for _, payload := range []int{5, 12, 5, 9} {
		require.NoError(t, n.Next(ctx, payload))
	}
	require.Equal(t, 9, n.Snapshot().Step.ID)

	require.NoError(t, n.Next(ctx, 0))

	snap := n.Snapshot()
	assert.Equal(t, 1, snap.Step.ID)
	assert.Nil(t, snap.Context.SelectedProvinceID)
	assert.Nil(t, snap.Context.SelectedCityID)
	assert.Equal(t, []int{}, snap.Context.History)
	assert.Equal(t, map[int]Answer{}, snap.Context.Answers)
}

func TestNavigator_LoadFailureKeepsStateAndRetryReplays(t *testing.T) {
	graph := triageGraph()
	failing := true
	steps := &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		if id == 4 && failing {
			return nil, errors.New(errors.ErrCodeUpstream, "backend unreachable")
		}
		return graph[id], nil
	}}
	n := startedNavigator(t, steps)
	ctx := context.Background()
	require.NoError(t, n.Next(ctx, 5))
	require.NoError(t, n.Next(ctx, 12))

	err := n.Next(ctx, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUpstream))

	snap := n.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, 3, snap.Step.ID)
	assert.Equal(t, []int{1, 2}, snap.Context.History)
	assert.Empty(t, snap.Context.Answers)
	assert.Equal(t, "next", snap.PendingAction)
	assert.NotEmpty(t, snap.Error)

	failing = false
	require.NoError(t, n.Retry(ctx))

	snap = n.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, 4, snap.Step.ID)
	assert.Equal(t, []int{1, 2, 3}, snap.Context.History)
	assert.Equal(t, "SÍ, es Grupo de Riesgo", snap.Context.Answers[3].Label)
	assert.Empty(t, snap.PendingAction)
}

func TestNavigator_RetryAfterFailedStart(t *testing.T) {
	graph := triageGraph()
	attempts := 0
	steps := &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New(errors.ErrCodeUpstream, "down")
		}
		return graph[id], nil
	}}
	n := NewNavigator(steps, Transitions{})

	require.Error(t, n.Start(context.Background()))
	assert.Equal(t, StatusError, n.Snapshot().Status)
	assert.ErrorIs(t, n.Next(context.Background(), 5), ErrNoStep)

	require.NoError(t, n.Retry(context.Background()))
	assert.Equal(t, 1, n.Snapshot().Step.ID)

	// nothing left to retry
	require.NoError(t, n.Retry(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestNavigator_RejectsNavigationWhileInFlight(t *testing.T) {
	graph := triageGraph()
	release := make(chan struct{})
	entered := make(chan struct{})
	steps := &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		if id == 2 {
			close(entered)
			<-release
		}
		return graph[id], nil
	}}
	n := startedNavigator(t, steps)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = n.Next(ctx, 5)
	}()
	<-entered

	assert.Equal(t, StatusTransitioning, n.Snapshot().Status)
	assert.ErrorIs(t, n.Next(ctx, 6), ErrBusy)
	assert.ErrorIs(t, n.Back(ctx), ErrBusy)
	assert.ErrorIs(t, n.Retry(ctx), ErrBusy)

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	snap := n.Snapshot()
	assert.Equal(t, 2, snap.Step.ID)
	assert.Equal(t, 5, *snap.Context.SelectedProvinceID)
}

func TestNavigator_CancelDropsStaleResponse(t *testing.T) {
	graph := triageGraph()
	release := make(chan struct{})
	entered := make(chan struct{})
	steps := &MockStepsClient{GetStepFunc: func(ctx context.Context, id int) (*client.Step, error) {
		if id == 2 {
			close(entered)
			<-release
		}
		return graph[id], nil
	}}
	n := startedNavigator(t, steps)

	done := make(chan error, 1)
	go func() { done <- n.Next(context.Background(), 5) }()
	<-entered

	n.Cancel()
	assert.Equal(t, StatusReady, n.Snapshot().Status)

	close(release)
	assert.True(t, stderrors.Is(<-done, ErrSuperseded))

	snap := n.Snapshot()
	assert.Equal(t, 1, snap.Step.ID)
	assert.Nil(t, snap.Context.SelectedProvinceID)
}

func TestNavigator_QuestionRejectsUnknownOption(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()
	require.NoError(t, n.Next(ctx, 5))
	require.NoError(t, n.Next(ctx, 12))

	err := n.Next(ctx, 7)
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Equal(t, 3, n.Snapshot().Step.ID)
	assert.Equal(t, StatusReady, n.Snapshot().Status)
}

func TestNavigator_QuestionCodePrefix(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()
	for _, payload := range []int{5, 12, 5} {
		require.NoError(t, n.Next(ctx, payload))
	}
	assert.Equal(t, KindQuestion, n.Snapshot().Kind)

	require.NoError(t, n.Next(ctx, 9))
	assert.Equal(t, "Tuberculosis Pulmonar", n.Snapshot().Context.Answers[5].Label)
}

func TestNavigator_LocationTargets(t *testing.T) {
	graph := triageGraph()
	graph[1].NextStepID = 0

	n := startedNavigator(t, graphClient(graph))
	assert.ErrorIs(t, n.Next(context.Background(), 5), ErrNoTransition)
	assert.ErrorIs(t, n.Next(context.Background(), 0), ErrInvalidPayload)

	n = NewNavigator(graphClient(graph), Transitions{InitialStepID: 1, ProvinceNextStepID: 2})
	require.NoError(t, n.Start(context.Background()))
	require.NoError(t, n.Next(context.Background(), 5))
	assert.Equal(t, 2, n.Snapshot().Step.ID)
}

func TestNavigator_ChangingProvinceClearsCity(t *testing.T) {
	graph := triageGraph()
	n := startedNavigator(t, graphClient(graph))
	ctx := context.Background()

	require.NoError(t, n.Next(ctx, 5))
	require.NoError(t, n.Next(ctx, 12))
	require.NoError(t, n.Back(ctx))
	require.NoError(t, n.Back(ctx))
	require.Equal(t, 1, n.Snapshot().Step.ID)

	require.NoError(t, n.Next(ctx, 7))
	snap := n.Snapshot()
	assert.Equal(t, 7, *snap.Context.SelectedProvinceID)
	assert.Nil(t, snap.Context.SelectedCityID)
}

func TestNavigator_UnknownCode(t *testing.T) {
	graph := map[int]*client.Step{1: {ID: 1, Code: "STEP_MYSTERY"}}
	n := startedNavigator(t, graphClient(graph))

	assert.Equal(t, KindUnknown, n.Snapshot().Kind)
	assert.ErrorIs(t, n.Next(context.Background(), 2), ErrUnknownCode)
}

func TestNavigator_RecordAndRestore(t *testing.T) {
	graph := triageGraph()
	n := startedNavigator(t, graphClient(graph))
	ctx := context.Background()
	for _, payload := range []int{5, 12, 4} {
		require.NoError(t, n.Next(ctx, payload))
	}
	rec, ok := n.Record()
	require.True(t, ok)

	restored := NewNavigator(graphClient(graph), Transitions{})
	require.NoError(t, restored.Restore(ctx, rec))

	assert.Equal(t, n.Snapshot(), restored.Snapshot())
	require.NoError(t, restored.Back(ctx))
	assert.Equal(t, 3, restored.Snapshot().Step.ID)

	_, ok = NewNavigator(graphClient(graph), Transitions{}).Record()
	assert.False(t, ok)
}

func TestNavigator_ClaimSubmission(t *testing.T) {
	n := startedNavigator(t, graphClient(triageGraph()))
	ctx := context.Background()

	assert.False(t, n.ClaimSubmission(0))
	for _, payload := range []int{5, 12, 5, 9} {
		require.NoError(t, n.Next(ctx, payload))
	}
	assert.False(t, n.ClaimSubmission(2))
	assert.True(t, n.ClaimSubmission(1))
	assert.False(t, n.ClaimSubmission(1))

	rec, ok := n.Record()
	require.True(t, ok)
	assert.Equal(t, uint64(1), rec.Submitted)

	restored := NewNavigator(graphClient(triageGraph()), Transitions{})
	require.NoError(t, restored.Restore(ctx, rec))
	assert.False(t, restored.ClaimSubmission(1))
}
