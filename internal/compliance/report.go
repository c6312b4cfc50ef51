package compliance

import (
	"fmt"
	"math"
	"time"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// BatchResult summarizes ValidateErrorObject over a list. Violations[i]
// belongs to the i-th input and is empty when that input is valid.
type BatchResult struct {
	Total      int        `json:"total"`
	Valid      int        `json:"valid"`
	Invalid    int        `json:"invalid"`
	Violations [][]string `json:"violations"`
}

// BatchValidateErrors applies ValidateErrorObject to each element.
func BatchValidateErrors[T any](errs []T) BatchResult {
	out := BatchResult{Total: len(errs), Violations: make([][]string, len(errs))}
	for i, e := range errs {
		r := ValidateErrorObject(any(e))
		if r.IsValid {
			out.Valid++
		} else {
			out.Invalid++
		}
		out.Violations[i] = r.Violations
	}
	return out
}

// templateDefaults holds the representative subtype of each category.
var templateDefaults = map[errcodes.Category]struct {
	name    string
	code    errcodes.Code
	message string
}{
	errcodes.CategoryValidation:     {apperr.NameValidation, errcodes.ValidationFailed, "Validation failed. Please check your input."},
	errcodes.CategoryAuthentication: {apperr.NameUnauthorized, errcodes.Unauthorized, "Please log in to continue."},
	errcodes.CategoryNotFound:       {apperr.NameNotFound, errcodes.ResourceNotFound, "The requested resource was not found."},
	errcodes.CategoryBusiness:       {apperr.NameConflict, errcodes.ResourceConflict, "This operation conflicts with existing data."},
	errcodes.CategoryServer:         {apperr.NameInternalServer, errcodes.InternalServerError, "An unexpected error occurred. Please try again later."},
}

// CreateErrorResponseTemplate returns a skeleton response for category with
// status pre-filled from the category's conventional HTTP status and, for
// validation, an empty errors map. ok is false for unknown categories.
func CreateErrorResponseTemplate(category errcodes.Category) (apperr.Response, bool) {
	d, ok := templateDefaults[category]
	if !ok {
		return apperr.Response{}, false
	}
	r := apperr.Response{
		Success:   false,
		Error:     d.name,
		Code:      d.code,
		Message:   d.message,
		Category:  category,
		Type:      apperr.TypeURI("", category, d.name),
		Title:     apperr.Title(d.name),
		Status:    errcodes.HTTPStatus(category),
		Timestamp: time.Now().UTC().Format(apperr.TimestampLayout),
	}
	if category == errcodes.CategoryValidation {
		r.Errors = map[string]string{}
	}
	return r, true
}

// JSONRenderer is anything that renders itself into the wire response.
type JSONRenderer interface {
	ToJSON(includeStack bool) apperr.Response
}

// GetErrorComplianceScore renders err and scores the response from 0 to 100
// by the share of passed response checks. A nil or panicking renderer
// scores 0.
func GetErrorComplianceScore(err JSONRenderer) (score int) {
	defer func() {
		if recover() != nil {
			score = 0
		}
	}()
	if err == nil {
		return 0
	}
	return ScoreResponse(err.ToJSON(false))
}

// ScoreResponse scores an already rendered or captured response.
func ScoreResponse(response any) int {
	return scoreOf(ValidateErrorResponse(response))
}

func scoreOf(r Result) int {
	s := math.Round(100 * (1 - float64(len(r.Violations))/responseChecks))
	return int(math.Max(0, math.Min(100, s)))
}

// Report summarizes the compliance of a list of errors or responses.
type Report struct {
	TotalErrors            int              `json:"totalErrors"`
	ValidErrors            int              `json:"validErrors"`
	InvalidErrors          int              `json:"invalidErrors"`
	AverageComplianceScore float64          `json:"averageComplianceScore"`
	ViolationsByError      map[int][]string `json:"violationsByError"`
	Passed                 bool             `json:"passed"`
	Message                string           `json:"message"`
}

// GenerateErrorComplianceReport scores every error and averages the scores.
// The report passes when the average is exactly 100. An empty list passes
// vacuously with an average of 100.
func GenerateErrorComplianceReport[T JSONRenderer](errs []T) Report {
	results := make([]Result, len(errs))
	for i, e := range errs {
		results[i] = renderAndValidate(e)
	}
	return buildReport(results)
}

// GenerateResponseComplianceReport is GenerateErrorComplianceReport for
// captured wire responses (maps, raw JSON or apperr.Response values).
func GenerateResponseComplianceReport(responses []any) Report {
	results := make([]Result, len(responses))
	for i, r := range responses {
		results[i] = ValidateErrorResponse(r)
	}
	return buildReport(results)
}

func renderAndValidate(r JSONRenderer) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Violations: []string{fmt.Sprintf("error could not be rendered: %v", rec)}}
		}
	}()
	if r == nil {
		return Result{Violations: []string{"error must not be nil"}}
	}
	return ValidateErrorResponse(r.ToJSON(false))
}

func buildReport(results []Result) Report {
	rep := Report{
		TotalErrors:            len(results),
		AverageComplianceScore: 100,
		ViolationsByError:      map[int][]string{},
	}
	if len(results) == 0 {
		rep.Passed = true
		rep.Message = "No errors to audit"
		return rep
	}
	sum := 0
	for i, r := range results {
		sum += scoreOf(r)
		if r.IsValid {
			rep.ValidErrors++
			continue
		}
		rep.InvalidErrors++
		rep.ViolationsByError[i] = r.Violations
	}
	rep.AverageComplianceScore = math.Round(float64(sum)/float64(len(results))*100) / 100
	rep.Passed = rep.AverageComplianceScore == 100
	if rep.Passed {
		rep.Message = "All errors comply with standards"
	} else {
		rep.Message = fmt.Sprintf("%d errors have compliance violations", rep.InvalidErrors)
	}
	return rep
}
