package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kakeibo-app/kakeibo/models"
)

// HTTPClientConfig configures the REST adapter.
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpRemoteAPI struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// collectionPaths maps entity types to their REST collections.
var collectionPaths = map[models.EntityType]string{
	models.EntityLedgerEntry: "/api/entries",
	models.EntityAccount:     "/api/accounts",
	models.EntityBudget:      "/api/budgets",
	models.EntityGoal:        "/api/goals",
}

func NewHTTPRemoteAPI(cfg HTTPClientConfig) RemoteAPI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteAPI{client: cli}
}

func (h *httpRemoteAPI) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteAPI) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteAPI) Login(ctx context.Context, creds models.Credentials) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(creds).
		Post("/api/auth/login")
	if err != nil {
		return models.Token{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("login parse bearer token: %w", err)
	}
	userID, err := parseUserIDFromJWT(token)
	if err != nil {
		return models.Token{}, fmt.Errorf("login parse user id: %w", err)
	}

	h.SetToken(token)
	return models.Token{SignedString: token, UserID: userID}, nil
}

func (h *httpRemoteAPI) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/ping")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpRemoteAPI) Create(ctx context.Context, entityType models.EntityType, payload json.RawMessage) (json.RawMessage, error) {
	path, err := collectionPath(entityType)
	if err != nil {
		return nil, err
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(payload)).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", entityType, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpRemoteAPI) Update(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) (json.RawMessage, error) {
	path, err := collectionPath(entityType)
	if err != nil {
		return nil, err
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(payload)).
		Put(path + "/" + id)
	if err != nil {
		return nil, fmt.Errorf("update %s request: %w", entityType, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpRemoteAPI) Delete(ctx context.Context, entityType models.EntityType, id string) error {
	path, err := collectionPath(entityType)
	if err != nil {
		return err
	}

	resp, err := h.authedRequest(ctx).Delete(path + "/" + id)
	if err != nil {
		return fmt.Errorf("delete %s request: %w", entityType, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteAPI) Replay(ctx context.Context, op models.QueueOperation) (json.RawMessage, error) {
	switch op.Operation {
	case models.OpCreate:
		return h.Create(ctx, op.EntityType, op.Payload)
	case models.OpUpdate:
		return h.Update(ctx, op.EntityType, op.EntityID, op.Payload)
	case models.OpDelete:
		return nil, h.Delete(ctx, op.EntityType, op.EntityID)
	default:
		return nil, fmt.Errorf("unknown operation type %q", op.Operation)
	}
}

func (h *httpRemoteAPI) FetchLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := h.fetchCollection(ctx, models.EntityLedgerEntry, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *httpRemoteAPI) FetchAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := h.fetchCollection(ctx, models.EntityAccount, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (h *httpRemoteAPI) FetchBudgets(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := h.fetchCollection(ctx, models.EntityBudget, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (h *httpRemoteAPI) FetchGoals(ctx context.Context) ([]models.Goal, error) {
	var goals []models.Goal
	if err := h.fetchCollection(ctx, models.EntityGoal, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (h *httpRemoteAPI) fetchCollection(ctx context.Context, entityType models.EntityType, dst any) error {
	path, err := collectionPath(entityType)
	if err != nil {
		return err
	}

	resp, err := h.authedRequest(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("fetch %s request: %w", entityType, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	if err = json.Unmarshal(resp.Body(), dst); err != nil {
		return fmt.Errorf("decode %s response: %w", entityType, err)
	}

	return nil
}

func (h *httpRemoteAPI) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func collectionPath(entityType models.EntityType) (string, error) {
	path, ok := collectionPaths[entityType]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entityType)
	}
	return path, nil
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

func parseUserIDFromJWT(tokenString string) (int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}
