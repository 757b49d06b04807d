package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"opsconsole/lib/apperr"
	"opsconsole/lib/clients"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
	"opsconsole/lib/policy"
)

// UserService manages console logins. When an identity provider is
// configured, every change is mirrored into it; mirror failures after a
// successful store write are logged rather than returned.
type UserService struct {
	store    data.RecordStore
	identity clients.IdentityProvider
	logger   *logrus.Logger
	now      Clock
	cap      int
}

// NewUserService creates a UserService. identity may be nil.
func NewUserService(store data.RecordStore, identity clients.IdentityProvider, opts Options) *UserService {
	opts = opts.withDefaults()
	return &UserService{
		store:    store,
		identity: identity,
		logger:   opts.Logger,
		now:      opts.Now,
		cap:      opts.FetchCap,
	}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	docs, err := s.store.Find(ctx, data.CollectionUsers, nil, data.FindOptions{Limit: s.cap})
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		var u models.User
		if err := models.DecodeDocument(doc, &u); err != nil {
			s.logger.WithFields(logrus.Fields{
				"operation": "List",
				"id":        doc.ID(),
				"error":     err.Error(),
			}).Warn("Skipping malformed user")
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, data.Filter{"id": id}, id)
}

// FindByEmail returns the user registered under email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, data.Filter{"email": strings.ToLower(strings.TrimSpace(email))}, email)
}

func (s *UserService) findOne(ctx context.Context, filter data.Filter, key string) (*models.User, error) {
	docs, err := s.store.Find(ctx, data.CollectionUsers, filter, data.FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("user", key)
	}
	var u models.User
	if err := models.DecodeDocument(docs[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create invites a new user. Only Admins may do this.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req models.CreateUserRequest) (*models.User, error) {
	if err := policy.Authorize(actor.Role, policy.CreateUser, policy.Resource{Kind: "user"}); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        NewID("user"),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Mobile:    req.Mobile,
		Role:      req.Role,
		Status:    models.UserStatusInvited,
		CreatedAt: models.Timestamp(s.now()),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return nil, apperr.Invalid("email", "is already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	if s.identity != nil {
		sub, err := s.identity.CreateUser(ctx, user.Email, user.Name, user.Role)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"operation": "Create",
				"email":     user.Email,
				"error":     err.Error(),
			}).Error("Failed to create user in identity provider")
			return nil, err
		}
		user.CognitoID = sub
	}

	doc, err := models.ToDocument(user)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, data.CollectionUsers, doc); err != nil {
		if s.identity != nil {
			if cleanupErr := s.identity.DeleteUser(ctx, user.Email); cleanupErr != nil {
				s.logger.WithFields(logrus.Fields{
					"operation": "Create",
					"email":     user.Email,
					"error":     cleanupErr.Error(),
				}).Warn("Failed to remove identity after store failure")
			}
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "Create",
		"user_id":   user.ID,
		"role":      user.Role,
		"actor":     actor.ID,
	}).Info("User created")
	return user, nil
}

// Update changes a user's profile, role or status. Only Admins may do this,
// and an Admin's role can never be changed.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id string, req models.UpdateUserRequest) (*models.User, error) {
	if err := policy.Authorize(actor.Role, policy.UpdateUser, policy.Resource{Kind: "user"}); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor.Role, policy.UpdateUser, policy.Resource{Kind: "user", TargetRole: existing.Role, NewRole: req.Role}); err != nil {
		return nil, err
	}

	partial, err := models.ToDocument(req)
	if err != nil {
		return nil, err
	}
	if len(partial) == 0 {
		return nil, apperr.Invalid("", "no updatable fields supplied")
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Mobile != nil {
		updated.Mobile = req.Mobile
	}
	if req.Role != nil {
		updated.Role = *req.Role
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	n, err := s.store.Update(ctx, data.CollectionUsers, id, partial)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("user", id)
	}

	if s.identity != nil && updated.Role != existing.Role {
		if err := s.identity.UpdateRole(ctx, existing.Email, updated.Role); err != nil {
			s.logger.WithFields(logrus.Fields{
				"operation": "Update",
				"user_id":   id,
				"error":     err.Error(),
			}).Warn("Failed to update role in identity provider, but store update succeeded")
		}
	}
	return &updated, nil
}

// Delete removes a non-Admin user. Only Admins may do this.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := policy.Authorize(actor.Role, policy.DeleteUser, policy.Resource{Kind: "user"}); err != nil {
		return err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor.Role, policy.DeleteUser, policy.Resource{Kind: "user", TargetRole: existing.Role}); err != nil {
		return err
	}

	n, err := s.store.Delete(ctx, data.CollectionUsers, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user", id)
	}

	if s.identity != nil {
		if err := s.identity.DeleteUser(ctx, existing.Email); err != nil {
			s.logger.WithFields(logrus.Fields{
				"operation": "Delete",
				"user_id":   id,
				"error":     err.Error(),
			}).Warn("Failed to delete user from identity provider, but store deletion succeeded")
		}
	}
	return nil
}

// EnsureSeedAdmin stores an active Admin for email unless a user with that
// email already exists. It reports whether a user was created.
func (s *UserService) EnsureSeedAdmin(ctx context.Context, email, name string) (bool, error) {
	if email == "" {
		return false, nil
	}
	if _, err := s.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !apperr.IsNotFound(err) {
		return false, err
	}

	if name == "" {
		name = "Admin"
	}
	admin := &models.User{
		ID:        NewID("user"),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      models.RoleAdmin,
		Status:    models.UserStatusActive,
		CreatedAt: models.Timestamp(s.now()),
	}
	if err := admin.Validate(); err != nil {
		return false, err
	}
	doc, err := models.ToDocument(admin)
	if err != nil {
		return false, err
	}
	if err := s.store.Insert(ctx, data.CollectionUsers, doc); err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "EnsureSeedAdmin",
		"email":     admin.Email,
	}).Info("Seeded admin user")
	return true, nil
}

// Activate marks the user registered under email as Active and records
// the identity provider's id for it. It is called when the user confirms
// their account, so it is not policy-gated. It reports whether the stored
// user changed.
func (s *UserService) Activate(ctx context.Context, email, cognitoID string) (bool, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.Status == models.UserStatusActive && user.CognitoID == cognitoID {
		return false, nil
	}

	partial := models.Document{"status": models.UserStatusActive}
	if cognitoID != "" {
		partial["cognito_id"] = cognitoID
	}
	n, err := s.store.Update(ctx, data.CollectionUsers, user.ID, partial)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, apperr.NotFound("user", user.ID)
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "Activate",
		"user_id":   user.ID,
	}).Info("User activated")
	return true, nil
}
