package usecases

import "context"

type CreateRequestExecutor interface {
	Execute(ctx context.Context, cmd CreateRequestCommand) (*RequestResult, error)
}

type GetRequestExecutor interface {
	Execute(ctx context.Context, query GetRequestQuery) (*RequestResult, error)
}

type ListRequestsExecutor interface {
	Execute(ctx context.Context, query ListRequestsQuery) (*ListRequestsResult, error)
}

type DeleteRequestExecutor interface {
	Execute(ctx context.Context, cmd DeleteRequestCommand) (*RequestResult, error)
}

type ReportProblemExecutor interface {
	Execute(ctx context.Context, cmd ReportProblemCommand) (*RequestResult, error)
}

type ResolveProblemExecutor interface {
	Execute(ctx context.Context, cmd ResolveProblemCommand) (*RequestResult, error)
}

type RecordInvoiceStatusExecutor interface {
	Execute(ctx context.Context, cmd RecordInvoiceStatusCommand) (*MessageResult, error)
}

type SubmitApplicationExecutor interface {
	Execute(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error)
}

type DecideApplicationExecutor interface {
	Execute(ctx context.Context, cmd DecideApplicationCommand) (*DecideApplicationResult, error)
}

type ListApplicationsExecutor interface {
	Execute(ctx context.Context, query ListApplicationsQuery) (*ListApplicationsResult, error)
}

type ProposeAppointmentExecutor interface {
	Execute(ctx context.Context, cmd ProposeAppointmentCommand) (*AppointmentResult, error)
}

type RespondAppointmentExecutor interface {
	Execute(ctx context.Context, cmd RespondAppointmentCommand) (*AppointmentResult, error)
}

type IssueOrderExecutor interface {
	Execute(ctx context.Context, cmd IssueOrderCommand) (*OrderResult, error)
}

type DecideOrderExecutor interface {
	Execute(ctx context.Context, cmd DecideOrderCommand) (*OrderResult, error)
}

type GetOrderExecutor interface {
	Execute(ctx context.Context, query GetOrderQuery) (*OrderResult, error)
}

type SubmitRatingExecutor interface {
	Execute(ctx context.Context, cmd SubmitRatingCommand) (*RatingResult, error)
}

type ListRatingsExecutor interface {
	Execute(ctx context.Context, query ListRatingsQuery) (*ListRatingsResult, error)
}

type SendMessageExecutor interface {
	Execute(ctx context.Context, cmd SendMessageCommand) (*MessageResult, error)
}

type ListMessagesExecutor interface {
	Execute(ctx context.Context, query ListMessagesQuery) (*ListMessagesResult, error)
}

type OpenConversationExecutor interface {
	Execute(ctx context.Context, query OpenConversationQuery) (*ConversationResult, error)
}

type RelayOutboxExecutor interface {
	Execute(ctx context.Context) (*RelayResult, error)
}
