package marketplace

import (
	"context"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateRequestUC struct {
	result *usecases.RequestResult
	err    error
	got    usecases.CreateRequestCommand
}

func (m *mockCreateRequestUC) Execute(_ context.Context, cmd usecases.CreateRequestCommand) (*usecases.RequestResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetRequestUC struct {
	result *usecases.RequestResult
	err    error
}

func (m *mockGetRequestUC) Execute(_ context.Context, _ usecases.GetRequestQuery) (*usecases.RequestResult, error) {
	return m.result, m.err
}

type mockListRequestsUC struct {
	result *usecases.ListRequestsResult
	err    error
	got    usecases.ListRequestsQuery
}

func (m *mockListRequestsUC) Execute(_ context.Context, query usecases.ListRequestsQuery) (*usecases.ListRequestsResult, error) {
	m.got = query
	return m.result, m.err
}

type mockDeleteRequestUC struct {
	result *usecases.RequestResult
	err    error
}

func (m *mockDeleteRequestUC) Execute(_ context.Context, _ usecases.DeleteRequestCommand) (*usecases.RequestResult, error) {
	return m.result, m.err
}

type mockReportProblemUC struct {
	result *usecases.RequestResult
	err    error
	got    usecases.ReportProblemCommand
}

func (m *mockReportProblemUC) Execute(_ context.Context, cmd usecases.ReportProblemCommand) (*usecases.RequestResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockSubmitApplicationUC struct {
	result *usecases.SubmitApplicationResult
	err    error
	got    usecases.SubmitApplicationCommand
}

func (m *mockSubmitApplicationUC) Execute(_ context.Context, cmd usecases.SubmitApplicationCommand) (*usecases.SubmitApplicationResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockDecideApplicationUC struct {
	result *usecases.DecideApplicationResult
	err    error
	got    usecases.DecideApplicationCommand
}

func (m *mockDecideApplicationUC) Execute(_ context.Context, cmd usecases.DecideApplicationCommand) (*usecases.DecideApplicationResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockListApplicationsUC struct {
	result *usecases.ListApplicationsResult
	err    error
}

func (m *mockListApplicationsUC) Execute(_ context.Context, _ usecases.ListApplicationsQuery) (*usecases.ListApplicationsResult, error) {
	return m.result, m.err
}

type mockListMessagesUC struct {
	// pages are returned in order, one per call.
	pages []*usecases.ListMessagesResult
	err   error
	calls []usecases.ListMessagesQuery
}

func (m *mockListMessagesUC) Execute(_ context.Context, query usecases.ListMessagesQuery) (*usecases.ListMessagesResult, error) {
	m.calls = append(m.calls, query)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.pages) == 0 {
		return &usecases.ListMessagesResult{}, nil
	}
	page := m.pages[0]
	m.pages = m.pages[1:]
	return page, nil
}

type mockSendMessageUC struct {
	result *usecases.MessageResult
	err    error
	got    usecases.SendMessageCommand
}

func (m *mockSendMessageUC) Execute(_ context.Context, cmd usecases.SendMessageCommand) (*usecases.MessageResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockProposeAppointmentUC struct {
	result *usecases.AppointmentResult
	err    error
	got    usecases.ProposeAppointmentCommand
}

func (m *mockProposeAppointmentUC) Execute(_ context.Context, cmd usecases.ProposeAppointmentCommand) (*usecases.AppointmentResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockRespondAppointmentUC struct {
	result *usecases.AppointmentResult
	err    error
	got    usecases.RespondAppointmentCommand
}

func (m *mockRespondAppointmentUC) Execute(_ context.Context, cmd usecases.RespondAppointmentCommand) (*usecases.AppointmentResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockIssueOrderUC struct {
	result *usecases.OrderResult
	err    error
	got    usecases.IssueOrderCommand
}

func (m *mockIssueOrderUC) Execute(_ context.Context, cmd usecases.IssueOrderCommand) (*usecases.OrderResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetOrderUC struct {
	result *usecases.OrderResult
	err    error
}

func (m *mockGetOrderUC) Execute(_ context.Context, _ usecases.GetOrderQuery) (*usecases.OrderResult, error) {
	return m.result, m.err
}

type mockDecideOrderUC struct {
	result *usecases.OrderResult
	err    error
	got    usecases.DecideOrderCommand
}

func (m *mockDecideOrderUC) Execute(_ context.Context, cmd usecases.DecideOrderCommand) (*usecases.OrderResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockSubmitRatingUC struct {
	result *usecases.RatingResult
	err    error
	got    usecases.SubmitRatingCommand
}

func (m *mockSubmitRatingUC) Execute(_ context.Context, cmd usecases.SubmitRatingCommand) (*usecases.RatingResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockListRatingsUC struct {
	result *usecases.ListRatingsResult
	err    error
}

func (m *mockListRatingsUC) Execute(_ context.Context, _ usecases.ListRatingsQuery) (*usecases.ListRatingsResult, error) {
	return m.result, m.err
}

type mockResolveProblemUC struct {
	result *usecases.RequestResult
	err    error
}

func (m *mockResolveProblemUC) Execute(_ context.Context, _ usecases.ResolveProblemCommand) (*usecases.RequestResult, error) {
	return m.result, m.err
}

type mockRecordInvoiceStatusUC struct {
	result *usecases.MessageResult
	err    error
	got    usecases.RecordInvoiceStatusCommand
}

func (m *mockRecordInvoiceStatusUC) Execute(_ context.Context, cmd usecases.RecordInvoiceStatusCommand) (*usecases.MessageResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockOpenConversationUC struct {
	result *usecases.ConversationResult
	err    error
}

func (m *mockOpenConversationUC) Execute(_ context.Context, _ usecases.OpenConversationQuery) (*usecases.ConversationResult, error) {
	return m.result, m.err
}
