package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"social-service/internal/shared/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, in RegisterReq) (*Profile, error)
	Authenticate(ctx context.Context, email, password string) (*Profile, error)
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetConnections(ctx context.Context, id string) ([]Summary, error)
	Update(ctx context.Context, id, requesterID string, in UpdateReq) (*Profile, error)
	Connect(ctx context.Context, id, requesterID, targetID string) ([]Summary, error)
	Disconnect(ctx context.Context, id, requesterID, targetID string) ([]Summary, error)
}

type Option func(*service)

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) Option          { return func(s *service) { s.cost = cost } }
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

type service struct {
	repo Repository
	cost int
	now  func() time.Time
}

func NewService(r Repository, opts ...Option) Service {
	s := &service{repo: r, cost: bcrypt.DefaultCost, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *service) Register(ctx context.Context, in RegisterReq) (*Profile, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		PassHash: string(hash),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*Profile, error) {
	p, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PassHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Profile, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *service) GetConnections(ctx context.Context, id string) ([]Summary, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Connections(ctx, id)
}

// Update applies the provided fields of in. Only the owner may edit.
func (s *service) Update(ctx context.Context, id, requesterID string, in UpdateReq) (*Profile, error) {
	if id != requesterID {
		return nil, ErrNotOwner
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		in.Name = &n
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	fields := in.fields()
	if len(fields) == 0 {
		return s.repo.Get(ctx, id)
	}
	ok, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (in UpdateReq) fields() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("name", in.Name)
	set("email", in.Email)
	set("bio", in.Bio)
	set("location", in.Location)
	set("company", in.Company)
	set("avatar", in.Avatar)
	return out
}

func (s *service) Connect(ctx context.Context, id, requesterID, targetID string) ([]Summary, error) {
	if err := s.checkEdge(ctx, id, requesterID, targetID); err != nil {
		return nil, err
	}
	if err := s.repo.Connect(ctx, id, targetID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Connections(ctx, id)
}

func (s *service) Disconnect(ctx context.Context, id, requesterID, targetID string) ([]Summary, error) {
	if err := s.checkEdge(ctx, id, requesterID, targetID); err != nil {
		return nil, err
	}
	if err := s.repo.Disconnect(ctx, id, targetID); err != nil {
		return nil, err
	}
	return s.repo.Connections(ctx, id)
}

func (s *service) checkEdge(ctx context.Context, id, requesterID, targetID string) error {
	if id != requesterID {
		return ErrNotOwner
	}
	if err := checkID(id); err != nil {
		return err
	}
	if err := checkID(targetID); err != nil {
		return err
	}
	if id == targetID {
		return ErrSelfConnect
	}
	_, err := s.repo.Get(ctx, targetID)
	return err
}
