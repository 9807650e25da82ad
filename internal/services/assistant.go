package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/httpx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	assistantSalesWindow = 50

	geminiAttempts = 3
	geminiBackoff  = 500 * time.Millisecond

	AssistantApology = "Lo siento, hubo un error al consultar a la IA. Verifica tu conexión o clave API."
	AssistantEmpty   = "No pude generar una respuesta en este momento."
)

// TextGenerator is the one LLM call the assistant needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator returns nil when apiKey is empty; the assistant then
// answers every question with the apology.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (TextGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return WithRetry(&geminiGenerator{client: client, model: model}, geminiAttempts, geminiBackoff), nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", upstreamError{code: apiErr.Code, err: err}
		}
		return "", err
	}
	return resp.Text(), nil
}

type upstreamError struct {
	code int
	err  error
}

func (e upstreamError) Error() string       { return fmt.Sprintf("gemini %d: %v", e.code, e.err) }
func (e upstreamError) Unwrap() error       { return e.err }
func (e upstreamError) HTTPStatusCode() int { return e.code }

type retryingGenerator struct {
	next     TextGenerator
	attempts int
	backoff  time.Duration
}

// WithRetry retries transient failures (timeouts, 429, 5xx) with a
// doubling, jittered backoff.
func WithRetry(next TextGenerator, attempts int, backoff time.Duration) TextGenerator {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingGenerator{next: next, attempts: attempts, backoff: backoff}
}

func (r *retryingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	wait := r.backoff
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == r.attempts || !httpx.IsRetryableError(err) {
			break
		}
		t := time.NewTimer(httpx.JitterSleep(wait))
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
	return "", lastErr
}

type AssistantService interface {
	Ask(ctx context.Context, storeID uuid.UUID, query string) (string, error)
}

type assistantService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       storeGuard
	productRepo repos.ProductRepo
	saleRepo    repos.SaleRepo
	llm         TextGenerator
}

func NewAssistantService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	productRepo repos.ProductRepo,
	saleRepo repos.SaleRepo,
	llm TextGenerator,
) AssistantService {
	return &assistantService{
		db:          db,
		log:         log.With("service", "AssistantService"),
		guard:       storeGuard{storeRepo: storeRepo},
		productRepo: productRepo,
		saleRepo:    saleRepo,
		llm:         llm,
	}
}

// Ask only fails on access or input errors. Provider trouble turns into
// the apology text.
func (as *assistantService) Ask(ctx context.Context, storeID uuid.UUID, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", invalid("missing_query", "query is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := as.guard.load(dbc, storeID, accessRead, false); err != nil {
		return "", err
	}
	if as.llm == nil {
		as.log.Warn("Assistant called without a Gemini key")
		return AssistantApology, nil
	}
	products, err := as.productRepo.ListByStore(dbc, storeID)
	if err != nil {
		return "", fmt.Errorf("list products: %w", err)
	}
	recent, err := as.saleRepo.ListRecentByStore(dbc, storeID, assistantSalesWindow)
	if err != nil {
		return "", fmt.Errorf("list sales: %w", err)
	}
	prompt, err := buildAssistantPrompt(products, recent, query)
	if err != nil {
		return "", err
	}
	answer, err := as.llm.Generate(ctx, prompt)
	if err != nil {
		as.log.Warn("Gemini request failed", "store_id", storeID, "error", err)
		return AssistantApology, nil
	}
	if strings.TrimSpace(answer) == "" {
		return AssistantEmpty, nil
	}
	return answer, nil
}

type promptProduct struct {
	Name  string  `json:"name"`
	Stock int     `json:"stock"`
	Price float64 `json:"price"`
}

type promptSale struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Items string  `json:"items"`
}

// buildAssistantPrompt expects recent newest first and lists it oldest first.
func buildAssistantPrompt(products []*types.Product, recent []*types.Sale, query string) (string, error) {
	inv := make([]promptProduct, 0, len(products))
	for _, p := range products {
		inv = append(inv, promptProduct{Name: p.Name, Stock: p.Stock, Price: p.Price})
	}
	sales := make([]promptSale, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		s := recent[i]
		lines := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			lines = append(lines, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		sales = append(sales, promptSale{Date: s.Date.UTC().Format("2006-01-02T15:04:05Z"), Total: s.Total, Items: strings.Join(lines, ", ")})
	}
	invJSON, err := json.Marshal(inv)
	if err != nil {
		return "", fmt.Errorf("encode inventory: %w", err)
	}
	salesJSON, err := json.Marshal(sales)
	if err != nil {
		return "", fmt.Errorf("encode sales: %w", err)
	}

	var b strings.Builder
	b.WriteString("Actúa como un consultor de negocios experto.\n")
	b.WriteString("Aquí tienes los datos recientes del negocio:\n\n")
	fmt.Fprintf(&b, "Inventario actual: %s\n", invJSON)
	fmt.Fprintf(&b, "Últimas ventas: %s\n\n", salesJSON)
	fmt.Fprintf(&b, "Responde a la siguiente consulta del usuario de forma concisa, profesional y útil en español: %q\n", query)
	return b.String(), nil
}
