package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/compliance"
	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
	"github.com/tbourn/go-order-errors/internal/search"
)

// EventRepo defines the repository contract required by ComplianceService.
type EventRepo interface {
	CountErrorEvents(ctx context.Context, db *gorm.DB) (int64, error)
	ListErrorEventsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorEvent, error)
}

// DefaultAuditWindow is how many of the most recent events an audit covers.
const DefaultAuditWindow = 500

// Audit is a compliance report over captured error responses. EventIDs is
// aligned with the indexes of Report.ViolationsByError.
type Audit struct {
	Window   int               `json:"window"`
	Report   compliance.Report `json:"report"`
	EventIDs []string          `json:"event_ids"`
}

// ComplianceService audits the error responses the API actually sent.
type ComplianceService struct {
	DB   *gorm.DB
	Repo EventRepo
	// Window caps the number of events one audit reads.
	Window int
	// BaseURI prefixes the "type" of templates; empty uses the default.
	BaseURI string
}

// NewComplianceService constructs a ComplianceService with the default window.
func NewComplianceService(db *gorm.DB, r EventRepo) *ComplianceService {
	return &ComplianceService{DB: db, Repo: r, Window: DefaultAuditWindow}
}

// Audit re-validates the most recent captured responses.
func (s *ComplianceService) Audit(ctx context.Context) (Audit, error) {
	window := s.Window
	if window <= 0 {
		window = DefaultAuditWindow
	}
	events, err := s.Repo.ListErrorEventsPage(ctx, s.DB, 0, window)
	if err != nil {
		return Audit{}, err
	}
	responses := make([]any, len(events))
	ids := make([]string, len(events))
	for i, ev := range events {
		responses[i] = json.RawMessage(ev.Payload)
		ids[i] = ev.ID
	}
	return Audit{
		Window:   window,
		Report:   compliance.GenerateResponseComplianceReport(responses),
		EventIDs: ids,
	}, nil
}

// ListEventsPage returns a page of captured events, newest first, and the
// total count. Invalid page or pageSize fall back to defaults.
func (s *ComplianceService) ListEventsPage(ctx context.Context, page, pageSize int) ([]domain.ErrorEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := s.Repo.CountErrorEvents(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ErrorEvent{}, 0, nil
	}
	items, err := s.Repo.ListErrorEventsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Template returns the canonical response template of a category.
func (s *ComplianceService) Template(category string) (apperr.Response, error) {
	c := errcodes.Category(strings.TrimSpace(category))
	tpl, ok := compliance.CreateErrorResponseTemplate(c)
	if !ok {
		return apperr.Response{}, apperr.NewValidation("unknown error category", map[string]string{
			"category": "must be one of: " + categoryList(),
		})
	}
	tpl.Type = apperr.TypeURI(s.BaseURI, c, tpl.Error)
	return tpl, nil
}

// Catalog returns the registered error codes, optionally restricted to one
// category. A non-empty query ranks the codes by similarity of their name and
// description to the query and drops those that do not match at all.
func (s *ComplianceService) Catalog(category, query string) ([]errcodes.Definition, error) {
	defs := errcodes.All()
	if category != "" {
		c := errcodes.Category(category)
		if !c.Valid() {
			return nil, apperr.NewValidation("unknown error category", map[string]string{
				"category": "must be one of: " + categoryList(),
			})
		}
		defs = errcodes.ByCategory(c)
	}
	if strings.TrimSpace(query) == "" {
		return defs, nil
	}

	allowed := make(map[string]errcodes.Definition, len(defs))
	for _, d := range defs {
		allowed[strconv.Itoa(int(d.Code))] = d
	}
	out := make([]errcodes.Definition, 0)
	for _, r := range catalogIndex().TopK(query, 0) {
		if d, ok := allowed[r.Key]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

var catalogIndex = sync.OnceValue(func() search.Index {
	all := errcodes.All()
	docs := make([]search.Doc, len(all))
	for i, d := range all {
		docs[i] = search.Doc{
			Key:  strconv.Itoa(int(d.Code)),
			Text: d.Name + " " + string(d.Category) + " " + d.Description,
		}
	}
	return search.New(docs, search.WithStopwords(catalogStopwords))
})

var catalogStopwords = []string{"a", "an", "the", "is", "are", "of", "to", "for", "or", "and", "from", "does", "has", "in", "one", "more"}

func categoryList() string {
	cats := errcodes.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
