package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contractbot/internal/api"
	"contractbot/internal/domain"
	"contractbot/internal/ports"
	"contractbot/internal/services/buyback"
	"contractbot/internal/services/review"
)

// Store is the part of the ledger the command surface reads and writes.
type Store interface {
	ports.UserRepository
	ports.ContractRepository
	ListOcrSamples(ctx context.Context, contractID int64) ([]domain.OcrSample, error)
}

// Reviewer runs the OCR review workflow.
type Reviewer interface {
	ConfirmContract(ctx context.Context, contractID int64, reviewer string) (review.Result, error)
	CorrectSample(ctx context.Context, contractID int64, region, text, reviewer string) (review.Result, error)
}

// Server implements the generated StrictServerInterface.
type Server struct {
	store   Store
	review  Reviewer
	buyback *buyback.Percent
	auth    *Authenticator
	log     *zap.Logger
}

var _ api.StrictServerInterface = (*Server)(nil)

func New(store Store, reviewer Reviewer, pct *buyback.Percent, auth *Authenticator, log *zap.Logger) *Server {
	return &Server{store: store, review: reviewer, buyback: pct, auth: auth, log: log.Named("api")}
}

// Routes returns a chi.Router mounting the generated handlers. Bearer
// tokens are checked per operation by the router middleware; the admin
// scope is enforced by the strict middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())

	handler := api.NewStrictHandlerWithOptions(s, []api.StrictMiddlewareFunc{requireAdmin}, api.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  s.requestError,
		ResponseErrorHandlerFunc: s.responseError,
	})
	api.HandlerWithOptions(handler, api.ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      []api.MiddlewareFunc{s.auth.Middleware},
		ErrorHandlerFunc: s.requestError,
	})
	return r
}

func (s *Server) GetHealthz(_ context.Context, _ api.GetHealthzRequestObject) (api.GetHealthzResponseObject, error) {
	return api.GetHealthz200JSONResponse{Status: "ok"}, nil
}

func (s *Server) Register(ctx context.Context, req api.RegisterRequestObject) (api.RegisterResponseObject, error) {
	nickname := strings.TrimSpace(req.Body.Nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ports.ErrInvalidInput)
	}
	var displayName string
	if req.Body.DisplayName != nil {
		displayName = *req.Body.DisplayName
	}
	userID, err := s.store.GetOrCreateUser(ctx, identityFrom(ctx).ExternalID, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.store.LinkCharacter(ctx, userID, nickname); err != nil {
		return nil, err
	}
	return api.Register200JSONResponse{UserId: userID, Nickname: nickname}, nil
}

func (s *Server) GetBalance(ctx context.Context, _ api.GetBalanceRequestObject) (api.GetBalanceResponseObject, error) {
	userID, err := s.store.GetOrCreateUser(ctx, identityFrom(ctx).ExternalID, "")
	if err != nil {
		return nil, err
	}
	bal, err := s.store.CalculateBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return api.GetBalance200JSONResponse{Balance: bal}, nil
}

func (s *Server) GetBuyback(_ context.Context, _ api.GetBuybackRequestObject) (api.GetBuybackResponseObject, error) {
	return api.GetBuyback200JSONResponse{Percent: s.buyback.Get()}, nil
}

func (s *Server) SetBuyback(ctx context.Context, req api.SetBuybackRequestObject) (api.SetBuybackResponseObject, error) {
	if err := s.buyback.Set(req.Body.Percent); err != nil {
		return nil, err
	}
	s.log.Info("buyback percent updated",
		zap.Float64("percent", req.Body.Percent),
		zap.Int64("by", identityFrom(ctx).ExternalID))
	return api.SetBuyback200JSONResponse{Percent: s.buyback.Get()}, nil
}

func (s *Server) CreatePayout(ctx context.Context, req api.CreatePayoutRequestObject) (api.CreatePayoutResponseObject, error) {
	var reason string
	if req.Body.Reason != nil {
		reason = *req.Body.Reason
	}
	userID, err := s.store.GetOrCreateUser(ctx, req.Body.ExternalUserId, "")
	if err != nil {
		return nil, err
	}
	id, err := s.store.RecordPayout(ctx, userID, req.Body.Amount, reason)
	if err != nil {
		return nil, err
	}
	bal, err := s.store.CalculateBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return api.CreatePayout201JSONResponse{PayoutId: id, Balance: bal}, nil
}

func (s *Server) GetContract(ctx context.Context, req api.GetContractRequestObject) (api.GetContractResponseObject, error) {
	if err := checkContractID(req.Id); err != nil {
		return nil, err
	}
	c, items, err := s.store.GetContract(ctx, req.Id)
	if errors.Is(err, ports.ErrNotFound) {
		return api.GetContract404JSONResponse{Error: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	samples, err := s.store.ListOcrSamples(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	resp := api.GetContract200JSONResponse{
		Id:             c.ID,
		CreatedAt:      c.CreatedAt,
		System:         c.System,
		PlayerName:     c.PlayerName,
		LinkedUserId:   c.LinkedUserID,
		BuybackPercent: c.BuybackPercent,
		EstimatedTotal: c.EstimatedTotal,
		CreditedAmount: c.CreditedAmount,
		Items:          make([]api.ContractItem, 0, len(items)),
		Samples:        make([]api.OcrSample, 0, len(samples)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, api.ContractItem{Name: it.Name, Quantity: it.Quantity, EstimatedValue: it.EstimatedValue})
	}
	for _, sm := range samples {
		resp.Samples = append(resp.Samples, api.OcrSample{
			Region:         sm.Region,
			Box:            sm.Box[:],
			RecognizedText: sm.RecognizedText,
			ConfirmedText:  sm.ConfirmedText,
			Status:         api.OcrSampleStatus(sm.Status),
			ImageRef:       optional(sm.ImageRef),
			ReviewedBy:     optional(sm.ReviewedBy),
			ReviewedAt:     sm.ReviewedAt,
		})
	}
	return resp, nil
}

func (s *Server) GetInventory(ctx context.Context, req api.GetInventoryRequestObject) (api.GetInventoryResponseObject, error) {
	entries, err := s.store.Inventory(ctx, req.System)
	if err != nil {
		return nil, err
	}
	out := api.GetInventory200JSONResponse{System: req.System, Items: make([]api.InventoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Items = append(out.Items, api.InventoryEntry{ItemName: e.ItemName, Quantity: e.Quantity})
	}
	return out, nil
}

func (s *Server) ConfirmContract(ctx context.Context, req api.ConfirmContractRequestObject) (api.ConfirmContractResponseObject, error) {
	if err := checkContractID(req.Id); err != nil {
		return nil, err
	}
	res, err := s.review.ConfirmContract(ctx, req.Id, identityFrom(ctx).Reviewer())
	if err != nil {
		return nil, err
	}
	return api.ConfirmContract200JSONResponse(reviewResult(res)), nil
}

func (s *Server) CorrectSample(ctx context.Context, req api.CorrectSampleRequestObject) (api.CorrectSampleResponseObject, error) {
	if err := checkContractID(req.Id); err != nil {
		return nil, err
	}
	res, err := s.review.CorrectSample(ctx, req.Id, req.Region, req.Body.Text, identityFrom(ctx).Reviewer())
	if err != nil {
		return nil, err
	}
	return api.CorrectSample200JSONResponse(reviewResult(res)), nil
}

func checkContractID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: contract id must be positive", ports.ErrInvalidInput)
	}
	return nil
}

func reviewResult(res review.Result) api.ReviewResult {
	out := api.ReviewResult{Words: res.Words, Queued: res.Queued}
	if out.Words == nil {
		out.Words = []string{}
	}
	if len(res.Texts) > 0 {
		out.Texts = &res.Texts
	}
	return out
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// statusError carries an HTTP status out of a strict handler or middleware.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

// requestError answers malformed parameters and bodies.
func (s *Server) requestError(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

// responseError maps ledger and service errors onto status codes.
func (s *Server) responseError(w http.ResponseWriter, r *http.Request, err error) {
	var se *statusError
	switch {
	case errors.As(err, &se):
		writeError(w, se.code, se.msg)
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Error: msg})
}
