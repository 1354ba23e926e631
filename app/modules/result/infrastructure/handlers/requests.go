package resulthandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const maxBodyBytes = 64 << 10

// errBadRequest marks request decoding and validation failures.
var errBadRequest = errors.New("bad request")

type submitResultRequest struct {
	EventID       string     `json:"event_id" validate:"required"`
	RoundID       *uuid.UUID `json:"round_id"`
	Format        string     `json:"format" validate:"omitempty,oneof=1 2 3 m a"`
	CompetitorIDs []string   `json:"competitor_ids" validate:"required,min=1,dive,required"`
	Attempts      []int64    `json:"attempts" validate:"required,min=1,max=5"`
	Date          string     `json:"date"`
	CountryCode   string     `json:"country_code" validate:"omitempty,iso3166_1_alpha2"`
	ContinentCode string     `json:"continent_code" validate:"omitempty,oneof=AF AN AS EU NA OC SA"`
}

type editResultRequest struct {
	Attempts *[]int64 `json:"attempts" validate:"omitempty,min=1,max=5"`
	Date     *string  `json:"date" validate:"omitempty,min=1"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func (h *ResultHandlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func (req submitResultRequest) toCandidate(date time.Time) resultdomain.Candidate {
	return resultdomain.Candidate{
		EventID:       req.EventID,
		RoundID:       req.RoundID,
		Format:        resultdomain.RoundFormat(req.Format),
		CompetitorIDs: req.CompetitorIDs,
		Attempts:      toAttempts(req.Attempts),
		Date:          date,
		Location: resultdomain.Location{
			CountryCode:   req.CountryCode,
			ContinentCode: req.ContinentCode,
		},
	}
}

func (h *ResultHandlers) toEditRequest(req editResultRequest) (resultservice.EditRequest, error) {
	var out resultservice.EditRequest
	if req.Attempts != nil {
		attempts := toAttempts(*req.Attempts)
		out.Attempts = &attempts
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, h.now())
		if err != nil {
			return out, err
		}
		out.Date = &date
	}
	return out, nil
}

func toAttempts(values []int64) []resultdomain.Attempt {
	out := make([]resultdomain.Attempt, len(values))
	for i, v := range values {
		out[i] = resultdomain.Attempt(v)
	}
	return out
}

// parseDate accepts an ISO date or a natural-language one ("yesterday",
// "last saturday") relative to now. An empty input yields the zero time.
func parseDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	res, err := w.Parse(strings.ToLower(input), now.UTC())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: could not parse date %q: %v", errBadRequest, input, err)
	}
	if res == nil {
		return time.Time{}, fmt.Errorf("%w: could not recognize date %q", errBadRequest, input)
	}
	return resultdomain.TruncateDate(res.Time), nil
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid id", errBadRequest, value)
	}
	return id, nil
}
