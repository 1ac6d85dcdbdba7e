package authgate

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

type CreateUserMessage struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (e CreateUserMessage) Type() string { return "user.create" }

// CreateUserMessageFromEvent resolves the primary email of a user.created
// payload into a CreateUserMessage.
func CreateUserMessageFromEvent(data *UserCreatedData) (CreateUserMessage, error) {
	primary, ok := data.PrimaryEmail()
	if !ok {
		return CreateUserMessage{}, ErrPrimaryEmailNotFound
	}
	return CreateUserMessage{
		ID:    data.ID,
		Email: primary.EmailAddress,
	}, nil
}

// RepositoryResolver returns the repositories to use for a request
type RepositoryResolver interface {
	Repositories(ctx context.Context) (RepositoryManager, error)
}

type CreateUserHandler struct {
	repos  RepositoryResolver
	logger Logger
}

func NewCreateUserHandler(repos RepositoryResolver, logger Logger) *CreateUserHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &CreateUserHandler{repos: repos, logger: logger}
}

func (h *CreateUserHandler) Execute(ctx context.Context, msg CreateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user creation",
		).WithCode(http.StatusServiceUnavailable)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *CreateUserHandler) execute(ctx context.Context, msg CreateUserMessage) error {
	user := NewUser(msg.ID, msg.Email)
	if err := user.Validate(); err != nil {
		h.logger.Error("user record validation failed", "id", msg.ID, "error", err)
		return ErrInvalidPayload
	}

	repo, err := h.repos.Repositories(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "database unavailable").
			WithTextCode(TextCodeStorage).
			WithCode(http.StatusInternalServerError)
	}

	if _, err := repo.Users().Create(ctx, user); err != nil {
		return err
	}

	h.logger.Info("user created", "email", user.Email)
	return nil
}
