package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore persists tenant accounts. NID numbers are unique across
// accounts.
type UserStore interface {
	// Create inserts a new account. Returns ErrDuplicateAccount when an
	// account with the same NID already exists; any other storage
	// failure wraps models.ErrPersistenceFailure.
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNID(ctx context.Context, nidNumber string) (*models.User, error)
	FindByMobile(ctx context.Context, mobileNumber string) (*models.User, error)

	// UpdateLastLogin stamps the account's last successful login
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// UpdateCompletionScore persists a recomputed profile score and,
	// when the score crosses the verification threshold, the new status.
	UpdateCompletionScore(ctx context.Context, id string, score int, status string) error
}

// ErrDuplicateAccount signals a unique index conflict on account creation
var ErrDuplicateAccount = fmt.Errorf("account already exists for this id number")

// MongoUserStore stores accounts in MongoDB. Uniqueness rides on the
// nid_number index created at startup.
type MongoUserStore struct {
	collection *mongo.Collection
}

// NewMongoUserStore creates a Mongo-backed user store
func NewMongoUserStore(collection *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{collection: collection}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateAccount
		}
		observability.DatabaseOperations.WithLabelValues("user_create", "error").Inc()
		return fmt.Errorf("%w: create account: %v", models.ErrPersistenceFailure, err)
	}
	observability.DatabaseOperations.WithLabelValues("user_create", "success").Inc()
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrAccountNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) FindByNID(ctx context.Context, nidNumber string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"nid_number": nidNumber})
}

func (s *MongoUserStore) FindByMobile(ctx context.Context, mobileNumber string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"mobile_number": mobileNumber})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: load account: %v", models.ErrPersistenceFailure, err)
	}
	return &user, nil
}

func (s *MongoUserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrAccountNotFound
	}
	_, err = s.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_login_at": at, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("%w: update last login: %v", models.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *MongoUserStore) UpdateCompletionScore(ctx context.Context, id string, score int, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrAccountNotFound
	}
	update := bson.M{"completion_score": score, "updated_at": time.Now()}
	if status != "" {
		update["verification_status"] = status
	}
	_, err = s.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("%w: update completion score: %v", models.ErrPersistenceFailure, err)
	}
	return nil
}

// MemoryUserStore is an in-process account store for unit tests
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by hex id
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.NIDNumber == user.NIDNumber {
			return ErrDuplicateAccount
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID.Hex()] = &stored
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, models.ErrAccountNotFound
}

func (s *MemoryUserStore) FindByNID(ctx context.Context, nidNumber string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.NIDNumber == nidNumber {
			out := *u
			return &out, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (s *MemoryUserStore) FindByMobile(ctx context.Context, mobileNumber string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.MobileNumber == mobileNumber {
			out := *u
			return &out, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (s *MemoryUserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.ErrAccountNotFound
	}
	t := at
	u.LastLoginAt = &t
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) UpdateCompletionScore(ctx context.Context, id string, score int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.ErrAccountNotFound
	}
	u.CompletionScore = score
	if status != "" {
		u.VerificationStatus = status
	}
	u.UpdatedAt = time.Now()
	return nil
}
