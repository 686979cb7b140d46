package marketplace

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/testutil"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

var (
	testConsumer = identity.Consumer("user-consumer")
	testOwner    = identity.PartnerOwner("user-owner", []string{"partner-1"})
)

type requestHandlerMocks struct {
	create   *mockCreateRequestUC
	get      *mockGetRequestUC
	list     *mockListRequestsUC
	del      *mockDeleteRequestUC
	problem  *mockReportProblemUC
	submit   *mockSubmitApplicationUC
	decide   *mockDecideApplicationUC
	listApps *mockListApplicationsUC
}

func newTestRequestHandler() (*RequestHandler, *requestHandlerMocks) {
	m := &requestHandlerMocks{
		create:   &mockCreateRequestUC{},
		get:      &mockGetRequestUC{},
		list:     &mockListRequestsUC{},
		del:      &mockDeleteRequestUC{},
		problem:  &mockReportProblemUC{},
		submit:   &mockSubmitApplicationUC{},
		decide:   &mockDecideApplicationUC{},
		listApps: &mockListApplicationsUC{},
	}
	h := NewRequestHandler(m.create, m.get, m.list, m.del, m.problem, m.submit, m.decide, m.listApps, testutil.NewMockLogger())
	return h, m
}

func TestRequestHandler_CreateRequest(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h, m := newTestRequestHandler()
		m.create.result = &usecases.RequestResult{Request: &dto.RequestDTO{ID: "req_1", Status: "Anfrage"}}

		budget := int64(50000)
		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/requests", map[string]any{
			"summary":          "Bad sanieren",
			"category":         "sanitaer",
			"location":         "Berlin",
			"budget_max_cents": budget,
		})
		testutil.SetCallerContext(c, testConsumer)

		h.CreateRequest(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "user-consumer", m.create.got.Caller.UserID())
		assert.Equal(t, "Bad sanieren", m.create.got.Draft.Summary)
		require.NotNil(t, m.create.got.Draft.BudgetMaxCents)
		assert.Equal(t, budget, *m.create.got.Draft.BudgetMaxCents)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.True(t, resp.Success)
		var got dto.RequestDTO
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, "req_1", got.ID)
	})

	t.Run("missing summary is a validation error", func(t *testing.T) {
		h, _ := newTestRequestHandler()
		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/requests", map[string]any{
			"category": "sanitaer",
			"location": "Berlin",
		})
		testutil.SetCallerContext(c, testConsumer)

		h.CreateRequest(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, string(errors.ErrorTypeValidation), resp.Error.Type)
	})

	t.Run("malformed json", func(t *testing.T) {
		h, _ := newTestRequestHandler()
		c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/requests", `{"summary":`)
		testutil.SetCallerContext(c, testConsumer)

		h.CreateRequest(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestHandler_ListRequests(t *testing.T) {
	h, m := newTestRequestHandler()
	m.list.result = &usecases.ListRequestsResult{
		Requests: []*dto.RequestDTO{{ID: "req_1"}, {ID: "req_2"}},
		Total:    2,
		Page:     1,
		PageSize: 20,
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/requests?status=Aktiv&status=Problem&mine=true", nil)
	testutil.SetCallerContext(c, testOwner)

	h.ListRequests(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Aktiv", "Problem"}, m.list.got.Statuses)
	assert.True(t, m.list.got.Mine)
	assert.Equal(t, 1, m.list.got.Page)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var page struct {
		Items []dto.RequestDTO `json:"items"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Total)
}

func TestRequestHandler_GetRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", errors.NewNotFoundError("request not found"), http.StatusNotFound},
		{"forbidden", errors.NewForbiddenError("not your request"), http.StatusForbidden},
		{"upstream failure is hidden", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestRequestHandler()
			m.get.err = tt.err

			c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/requests/req_1", nil)
			testutil.SetCallerContext(c, testConsumer)
			testutil.SetURLParam(c, "id", "req_1")

			h.GetRequest(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), assert.AnError.Error())
		})
	}
}

func TestRequestHandler_ReportProblem(t *testing.T) {
	h, m := newTestRequestHandler()
	m.problem.result = &usecases.RequestResult{Request: &dto.RequestDTO{ID: "req_1", Status: "Problem"}}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/requests/req_1/problem", map[string]string{
		"note": "Handwerker nicht erschienen",
	})
	testutil.SetCallerContext(c, testConsumer)
	testutil.SetURLParam(c, "id", "req_1")

	h.ReportProblem(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req_1", m.problem.got.RequestID)
	assert.Equal(t, "Handwerker nicht erschienen", m.problem.got.Note)
}

func TestRequestHandler_SubmitApplication(t *testing.T) {
	t.Run("created returns the id", func(t *testing.T) {
		h, m := newTestRequestHandler()
		m.submit.result = &usecases.SubmitApplicationResult{
			Application:    &dto.ApplicationDTO{ID: "app_1"},
			ConversationID: "conv_1",
		}

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/applications", map[string]string{
			"request_id":   "req_1",
			"partner_id":   "partner-1",
			"message_text": "Wir können **morgen**.",
		})
		testutil.SetCallerContext(c, testOwner)

		h.SubmitApplication(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "partner-1", m.submit.got.PartnerID)
		assert.Equal(t, "Wir können **morgen**.", m.submit.got.Message)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var body struct {
			ID             string `json:"id"`
			ConversationID string `json:"conversation_id"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &body))
		assert.Equal(t, "app_1", body.ID)
		assert.Equal(t, "conv_1", body.ConversationID)
	})

	t.Run("duplicate is a conflict with reason", func(t *testing.T) {
		h, m := newTestRequestHandler()
		m.submit.err = errors.NewConflictError("partner already applied").WithReason(errors.ReasonAlreadyApplied)

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/applications", map[string]string{
			"request_id": "req_1",
			"partner_id": "partner-1",
		})
		testutil.SetCallerContext(c, testOwner)

		h.SubmitApplication(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, errors.ReasonAlreadyApplied, resp.Error.Reason)
	})
}

func TestRequestHandler_DecideApplication(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		h, m := newTestRequestHandler()
		m.decide.result = &usecases.DecideApplicationResult{
			Application:      &dto.ApplicationDTO{ID: "app_1", Status: "accepted"},
			Request:          &dto.RequestDTO{ID: "req_1", Status: "Aktiv"},
			ConversationID:   "conv_1",
			DeclinedSiblings: 2,
		}

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/applications/app_1/decision", map[string]string{
			"action":     "accept",
			"request_id": "req_1",
		})
		testutil.SetCallerContext(c, testConsumer)
		testutil.SetURLParam(c, "id", "app_1")

		h.DecideApplication(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecases.DecisionAccept, m.decide.got.Decision)
		assert.Equal(t, "app_1", m.decide.got.ApplicationID)
		assert.Equal(t, "req_1", m.decide.got.RequestID)
		assert.Contains(t, w.Body.String(), `"declined_siblings":2`)
	})

	t.Run("unknown action never reaches the use case", func(t *testing.T) {
		h, m := newTestRequestHandler()

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/applications/app_1/decision", map[string]string{
			"action":     "maybe",
			"request_id": "req_1",
		})
		testutil.SetCallerContext(c, testConsumer)
		testutil.SetURLParam(c, "id", "app_1")

		h.DecideApplication(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, m.decide.got.ApplicationID)
	})

	t.Run("losing a concurrent accept", func(t *testing.T) {
		h, m := newTestRequestHandler()
		m.decide.err = errors.NewConflictError("another application was accepted").WithReason(errors.ReasonAlreadyAccepted)

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/applications/app_2/decision", map[string]string{
			"action":     "accept",
			"request_id": "req_1",
		})
		testutil.SetCallerContext(c, testConsumer)
		testutil.SetURLParam(c, "id", "app_2")

		h.DecideApplication(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), errors.ReasonAlreadyAccepted)
	})
}

func TestMe(t *testing.T) {
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/me", nil)
	testutil.SetCallerContext(c, testOwner)

	Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var got callerResponse
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "user-owner", got.UserID)
	assert.Equal(t, string(identity.KindPartnerOwner), got.Kind)
	assert.Equal(t, []string{"partner-1"}, got.OwnedPartnerIDs)
	assert.False(t, got.IsAdmin)
}
