package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/sales"
)

type fakeLLM struct {
	prompt string
	answer string
	err    error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestAssistantAsk(t *testing.T) {
	f := newFixture(t)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")
	p := f.product(store, "A", 7, 1)
	sale := &types.Sale{
		StoreID:       store.ID,
		Date:          fixedNow,
		Total:         30,
		PaymentMethod: sales.PaymentCash,
		SoldBy:        "ana",
		Items:         []types.SaleItem{{ProductID: p.ID, Name: p.Name, Price: 15, Quantity: 2}},
	}
	if _, err := f.sales.Create(dbcOf(f), []*types.Sale{sale}); err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	llm := &fakeLLM{answer: "Sube el precio."}
	svc := NewAssistantService(f.db, f.log, f.stores, f.products, f.sales, llm)
	got, err := svc.Ask(as(owner), store.ID, "¿Qué hago?")
	if err != nil || got != "Sube el precio." {
		t.Fatalf("Ask = %q (%v)", got, err)
	}
	for _, want := range []string{"consultor de negocios", `"stock":7`, "2x " + p.Name, "¿Qué hago?"} {
		if !strings.Contains(llm.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, llm.prompt)
		}
	}

	llm.err = errors.New("quota")
	got, err = svc.Ask(as(owner), store.ID, "hola")
	if err != nil || got != AssistantApology {
		t.Fatalf("provider error = %q (%v)", got, err)
	}

	llm.err, llm.answer = nil, "  "
	got, _ = svc.Ask(as(owner), store.ID, "hola")
	if got != AssistantEmpty {
		t.Fatalf("empty answer = %q", got)
	}

	_, err = svc.Ask(as(owner), store.ID, " ")
	expectCode(t, err, http.StatusBadRequest, "missing_query")
}

func TestAssistantWithoutKey(t *testing.T) {
	f := newFixture(t)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")

	gen, err := NewGeminiGenerator(context.Background(), "", "")
	if err != nil || gen != nil {
		t.Fatalf("no key should give no generator: %v", err)
	}
	svc := NewAssistantService(f.db, f.log, f.stores, f.products, f.sales, gen)
	got, err := svc.Ask(as(owner), store.ID, "hola")
	if err != nil || got != AssistantApology {
		t.Fatalf("Ask = %q (%v)", got, err)
	}
}

func TestBuildAssistantPromptOrdersSalesOldestFirst(t *testing.T) {
	newer := &types.Sale{Date: fixedNow.Add(time.Hour), Total: 2}
	older := &types.Sale{Date: fixedNow, Total: 1}
	prompt, err := buildAssistantPrompt(nil, []*types.Sale{newer, older}, "q")
	if err != nil {
		t.Fatalf("buildAssistantPrompt: %v", err)
	}
	if strings.Index(prompt, `"total":1`) > strings.Index(prompt, `"total":2`) {
		t.Fatalf("sales not oldest first:\n%s", prompt)
	}
}

type flakyLLM struct {
	errs  []error
	calls int
}

func (f *flakyLLM) Generate(context.Context, string) (string, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return "", f.errs[f.calls-1]
	}
	return "ok", nil
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	flaky := &flakyLLM{errs: []error{upstreamError{code: 503, err: errors.New("unavailable")}, upstreamError{code: 429, err: errors.New("slow down")}}}
	got, err := WithRetry(flaky, 3, time.Millisecond).Generate(ctx, "p")
	if err != nil || got != "ok" || flaky.calls != 3 {
		t.Fatalf("transient: got %q err %v calls %d", got, err, flaky.calls)
	}

	denied := &flakyLLM{errs: []error{upstreamError{code: 403, err: errors.New("bad key")}}}
	if _, err := WithRetry(denied, 3, time.Millisecond).Generate(ctx, "p"); err == nil || denied.calls != 1 {
		t.Fatalf("permanent: err %v calls %d", err, denied.calls)
	}

	down := &flakyLLM{errs: []error{context.DeadlineExceeded, context.DeadlineExceeded, context.DeadlineExceeded}}
	if _, err := WithRetry(down, 2, time.Millisecond).Generate(ctx, "p"); !errors.Is(err, context.DeadlineExceeded) || down.calls != 2 {
		t.Fatalf("exhausted: err %v calls %d", err, down.calls)
	}
}
