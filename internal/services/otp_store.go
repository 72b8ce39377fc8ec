package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrActiveCodeExists reports an insert that lost the issuance race:
// another unused code for the same number landed first.
var ErrActiveCodeExists = fmt.Errorf("an active code already exists for this number")

// OTPStore persists issued verification codes. Consumed and superseded
// codes are retained with used=true rather than deleted. The store
// permits at most one unused code per mobile number at any instant.
type OTPStore interface {
	// Insert stores a freshly issued code. Returns ErrActiveCodeExists
	// when an unused code for the number is already present.
	Insert(ctx context.Context, rec *models.OTPRecord) error

	// SupersedeActive marks every unused code for the mobile number as
	// used, so only the forthcoming issuance can verify. Returns the
	// number of codes superseded.
	SupersedeActive(ctx context.Context, mobileNumber string) (int64, error)

	// Consume atomically finds the newest matching active code and marks
	// it used. Returns models.ErrInvalidOrExpiredOTP when nothing
	// matches.
	Consume(ctx context.Context, mobileNumber, code string, now time.Time) (*models.OTPRecord, error)

	// LastIssuedAt returns the creation time of the most recent code for
	// the mobile number, or the zero time when none exists.
	LastIssuedAt(ctx context.Context, mobileNumber string) (time.Time, error)
}

// MongoOTPStore stores codes in a MongoDB collection
type MongoOTPStore struct {
	collection *mongo.Collection
}

// NewMongoOTPStore creates a Mongo-backed OTP store
func NewMongoOTPStore(collection *mongo.Collection) *MongoOTPStore {
	return &MongoOTPStore{collection: collection}
}

func (s *MongoOTPStore) Insert(ctx context.Context, rec *models.OTPRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The partial unique index on unused codes serializes
			// issuance per phone across replicas
			return ErrActiveCodeExists
		}
		observability.DatabaseOperations.WithLabelValues("otp_insert", "error").Inc()
		return fmt.Errorf("failed to insert otp: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("otp_insert", "success").Inc()
	return nil
}

func (s *MongoOTPStore) SupersedeActive(ctx context.Context, mobileNumber string) (int64, error) {
	// Expired codes are included so a stale unused record never blocks
	// the next insert on the unique index
	res, err := s.collection.UpdateMany(ctx,
		bson.M{
			"mobile_number": mobileNumber,
			"used":          false,
		},
		bson.M{"$set": bson.M{"used": true}},
	)
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("otp_supersede", "error").Inc()
		return 0, fmt.Errorf("failed to supersede active otps: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("otp_supersede", "success").Inc()
	return res.ModifiedCount, nil
}

func (s *MongoOTPStore) Consume(ctx context.Context, mobileNumber, code string, now time.Time) (*models.OTPRecord, error) {
	// FindOneAndUpdate keeps find-and-mark atomic under concurrent
	// submissions of the same code
	var rec models.OTPRecord
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{
			"mobile_number": mobileNumber,
			"code":          code,
			"used":          false,
			"expires_at":    bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"used": true}},
		options.FindOneAndUpdate().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&rec)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrInvalidOrExpiredOTP
		}
		observability.DatabaseOperations.WithLabelValues("otp_consume", "error").Inc()
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("otp_consume", "success").Inc()
	return &rec, nil
}

func (s *MongoOTPStore) LastIssuedAt(ctx context.Context, mobileNumber string) (time.Time, error) {
	var rec models.OTPRecord
	err := s.collection.FindOne(ctx,
		bson.M{"mobile_number": mobileNumber},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&rec)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to query last otp: %w", err)
	}
	return rec.CreatedAt, nil
}

// MemoryOTPStore is an in-process OTP store used by unit tests and the
// development mode that runs without MongoDB.
type MemoryOTPStore struct {
	mu      sync.Mutex
	records []*models.OTPRecord
}

// NewMemoryOTPStore creates an empty in-memory OTP store
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{}
}

func (s *MemoryOTPStore) Insert(ctx context.Context, rec *models.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.MobileNumber == rec.MobileNumber && !r.Used {
			return ErrActiveCodeExists
		}
	}

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	stored := *rec
	s.records = append(s.records, &stored)
	return nil
}

func (s *MemoryOTPStore) SupersedeActive(ctx context.Context, mobileNumber string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, r := range s.records {
		if r.MobileNumber == mobileNumber && !r.Used {
			r.Used = true
			count++
		}
	}
	return count, nil
}

func (s *MemoryOTPStore) Consume(ctx context.Context, mobileNumber, code string, now time.Time) (*models.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*models.OTPRecord
	for _, r := range s.records {
		if r.MobileNumber == mobileNumber && r.Code == code && r.Active(now) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, models.ErrInvalidOrExpiredOTP
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	newest := candidates[0]
	newest.Used = true
	out := *newest
	return &out, nil
}

func (s *MemoryOTPStore) LastIssuedAt(ctx context.Context, mobileNumber string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last time.Time
	for _, r := range s.records {
		if r.MobileNumber == mobileNumber && r.CreatedAt.After(last) {
			last = r.CreatedAt
		}
	}
	return last, nil
}
