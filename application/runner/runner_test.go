package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"ticketmill/application/workflow"
	"ticketmill/domain/catalog"
)

// fakeCreator scripts per-code outcome sequences: each CreateTicket call
// for a code consumes the next outcome in its list, repeating the last.
type fakeCreator struct {
	outcomes map[string][]workflow.Outcome
	calls    []string
	recovers int
	recover  bool
	onCreate func()
}

func newFakeCreator() *fakeCreator {
	return &fakeCreator{
		outcomes: map[string][]workflow.Outcome{},
		recover:  true,
	}
}

func (f *fakeCreator) script(code string, outcomes ...workflow.Outcome) {
	f.outcomes[code] = outcomes
}

func (f *fakeCreator) CreateTicket(ctx context.Context, code string, entry catalog.Entry) workflow.Outcome {
	f.calls = append(f.calls, code)
	if f.onCreate != nil {
		f.onCreate()
	}
	seq := f.outcomes[code]
	if len(seq) == 0 {
		return workflow.OutcomeFailed
	}
	out := seq[0]
	if len(seq) > 1 {
		f.outcomes[code] = seq[1:]
	}
	return out
}

func (f *fakeCreator) Recover(ctx context.Context) bool {
	f.recovers++
	return f.recover
}

func (f *fakeCreator) countCalls(code string) int {
	n := 0
	for _, c := range f.calls {
		if c == code {
			n++
		}
	}
	return n
}

func fastRunnerConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		ItemDelay:  time.Millisecond,
	}
}

var testLookup = catalog.Lookup{
	"DP001": {City: "Jakarta", Region: "RK-01", Row: 2},
	"DP002": {City: "Bandung", Region: "RK-02", Row: 3},
}

func TestRun_DuplicateAndUnknownSkips(t *testing.T) {
	wf := newFakeCreator()
	wf.script("DP001", workflow.OutcomeSuccess)
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP001", "DP003", "DP001"})

	if stats.Successful != 1 || stats.Skipped != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 1 success / 2 skipped", stats)
	}
	if got := wf.countCalls("DP001"); got != 1 {
		t.Errorf("DP001 attempted %d times, want 1 (duplicate must not re-run)", got)
	}
	if wf.countCalls("DP003") != 0 {
		t.Error("unknown code must never reach the workflow")
	}
	if stats.Total() != 3 {
		t.Errorf("Total() = %d, want one counter increment per code", stats.Total())
	}
}

func TestRun_RetryThenSuccess(t *testing.T) {
	wf := newFakeCreator()
	wf.script("DP001", workflow.OutcomeFailed, workflow.OutcomeSuccess)
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP001"})

	if stats.Successful != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want recovery into success", stats)
	}
	if wf.countCalls("DP001") != 2 {
		t.Errorf("attempts = %d, want 2", wf.countCalls("DP001"))
	}
	if wf.recovers != 1 {
		t.Errorf("recovers = %d, want 1 (between attempts only)", wf.recovers)
	}
}

func TestRun_RetryExhaustion(t *testing.T) {
	wf := newFakeCreator()
	wf.script("DP001", workflow.OutcomeFailed)
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP001"})

	if stats.Failed != 1 || stats.Successful != 0 {
		t.Fatalf("stats = %+v, want exactly one failed increment", stats)
	}
	if got := wf.countCalls("DP001"); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if wf.recovers != 2 {
		t.Errorf("recovers = %d, want 2 (never after the last attempt)", wf.recovers)
	}
}

func TestRun_NoDataNotRetried(t *testing.T) {
	wf := newFakeCreator()
	wf.script("DP001", workflow.OutcomeNoData)
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP001"})

	if stats.Failed != 1 || stats.Successful != 0 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v, want the no-data item counted as failed", stats)
	}
	if wf.countCalls("DP001") != 1 {
		t.Error("no-data must be terminal, not retried")
	}
	if wf.recovers != 0 {
		t.Error("no recovery expected for a no-data outcome")
	}
}

func TestRun_OnlySuccessMarksProcessed(t *testing.T) {
	wf := newFakeCreator()
	// Every attempt of the first occurrence fails; the later duplicate
	// must be attempted again, and this time it succeeds.
	wf.script("DP001",
		workflow.OutcomeFailed, workflow.OutcomeFailed, workflow.OutcomeFailed,
		workflow.OutcomeSuccess)
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP001", "DP001"})

	if got := wf.countCalls("DP001"); got != 4 {
		t.Fatalf("attempts = %d, want 4 (a failed code is not remembered as processed)", got)
	}
	if stats.Failed != 1 || stats.Successful != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want 1 failed then 1 success", stats)
	}
}

func TestRun_UnknownCodeNeverMarkedProcessed(t *testing.T) {
	wf := newFakeCreator()
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP003", "DP003"})

	if stats.Skipped != 2 {
		t.Fatalf("stats = %+v, want both unknown occurrences skipped", stats)
	}
	if len(wf.calls) != 0 {
		t.Error("unknown codes must never reach the workflow")
	}
}

func TestRun_RecoveryFailureAbandonsCode(t *testing.T) {
	wf := newFakeCreator()
	wf.script("DP001", workflow.OutcomeFailed)
	wf.script("DP002", workflow.OutcomeSuccess)
	wf.recover = false
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	stats := r.Run(t.Context(), []string{"DP001", "DP002"})

	if got := wf.countCalls("DP001"); got != 1 {
		t.Errorf("DP001 attempts = %d, want 1 (abandoned after failed recovery)", got)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if stats.Successful != 1 {
		t.Error("a failed recovery must not stop later codes")
	}
}

func TestRun_CancellationPreservesPartialStats(t *testing.T) {
	wf := newFakeCreator()
	wf.script("DP001", workflow.OutcomeSuccess)
	wf.script("DP002", workflow.OutcomeSuccess)
	r := New(wf, testLookup, fastRunnerConfig(), nil)

	ctx, cancel := context.WithCancel(t.Context())
	// Cancel while the first code is in flight.
	wf.onCreate = cancel

	stats := r.Run(ctx, []string{"DP001", "DP002"})

	if stats.Successful != 1 {
		t.Errorf("stats = %+v, want the completed item preserved", stats)
	}
	if wf.countCalls("DP002") != 0 {
		t.Error("cancellation must stop before the next item")
	}
}

func TestStatsSummary(t *testing.T) {
	s := &Stats{
		Successful: 8,
		Failed:     2,
		Skipped:    2,
		Started:    time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		Finished:   time.Date(2026, 1, 5, 9, 5, 0, 0, time.UTC),
	}
	got := s.Summary()
	for _, want := range []string{"10 codes", "5m0s", "8 created", "2 failed", "2 skipped", "80.0%", "2.0 items/min"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
}
