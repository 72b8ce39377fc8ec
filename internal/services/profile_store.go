package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thikana-bd/app-thikana/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileStore persists the tenant profile sections. List sections
// (contacts, family, workers, previous landlords, documents) append;
// residence and landlord are one-per-account upserts.
type ProfileStore interface {
	AddEmergencyContact(ctx context.Context, c *models.EmergencyContact) error
	ListEmergencyContacts(ctx context.Context, userID primitive.ObjectID) ([]models.EmergencyContact, error)

	AddFamilyMember(ctx context.Context, m *models.FamilyMember) error
	ListFamilyMembers(ctx context.Context, userID primitive.ObjectID) ([]models.FamilyMember, error)

	AddHouseWorker(ctx context.Context, w *models.HouseWorker) error
	ListHouseWorkers(ctx context.Context, userID primitive.ObjectID) ([]models.HouseWorker, error)

	SaveResidence(ctx context.Context, r *models.Residence) error
	GetResidence(ctx context.Context, userID primitive.ObjectID) (*models.Residence, error)

	SaveLandlord(ctx context.Context, l *models.Landlord) error
	GetLandlord(ctx context.Context, userID primitive.ObjectID) (*models.Landlord, error)

	AddPreviousLandlord(ctx context.Context, p *models.PreviousLandlord) error
	ListPreviousLandlords(ctx context.Context, userID primitive.ObjectID) ([]models.PreviousLandlord, error)

	AddDocument(ctx context.Context, d *models.DocumentAttachment) error
	ListDocuments(ctx context.Context, userID primitive.ObjectID) ([]models.DocumentAttachment, error)

	AddNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
}

// ErrSectionNotFound is returned when a singleton section has not been
// saved yet
var ErrSectionNotFound = fmt.Errorf("profile section not yet saved")

// MongoProfileStore keeps each section in its own collection
type MongoProfileStore struct {
	contacts      *mongo.Collection
	family        *mongo.Collection
	workers       *mongo.Collection
	residences    *mongo.Collection
	landlords     *mongo.Collection
	prevLandlords *mongo.Collection
	documents     *mongo.Collection
	notifications *mongo.Collection
}

// MongoProfileCollections names the collections backing the store
type MongoProfileCollections struct {
	EmergencyContacts string
	FamilyMembers     string
	HouseWorkers      string
	Residences        string
	Landlords         string
	PreviousLandlords string
	Documents         string
	Notifications     string
}

// NewMongoProfileStore creates a Mongo-backed profile store
func NewMongoProfileStore(db *mongo.Database, names MongoProfileCollections) *MongoProfileStore {
	return &MongoProfileStore{
		contacts:      db.Collection(names.EmergencyContacts),
		family:        db.Collection(names.FamilyMembers),
		workers:       db.Collection(names.HouseWorkers),
		residences:    db.Collection(names.Residences),
		landlords:     db.Collection(names.Landlords),
		prevLandlords: db.Collection(names.PreviousLandlords),
		documents:     db.Collection(names.Documents),
		notifications: db.Collection(names.Notifications),
	}
}

func (s *MongoProfileStore) AddEmergencyContact(ctx context.Context, c *models.EmergencyContact) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	return insertOne(ctx, s.contacts, c, "emergency contact")
}

func (s *MongoProfileStore) ListEmergencyContacts(ctx context.Context, userID primitive.ObjectID) ([]models.EmergencyContact, error) {
	return findByUser[models.EmergencyContact](ctx, s.contacts, userID)
}

func (s *MongoProfileStore) AddFamilyMember(ctx context.Context, m *models.FamilyMember) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	return insertOne(ctx, s.family, m, "family member")
}

func (s *MongoProfileStore) ListFamilyMembers(ctx context.Context, userID primitive.ObjectID) ([]models.FamilyMember, error) {
	return findByUser[models.FamilyMember](ctx, s.family, userID)
}

func (s *MongoProfileStore) AddHouseWorker(ctx context.Context, w *models.HouseWorker) error {
	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now()
	return insertOne(ctx, s.workers, w, "house worker")
}

func (s *MongoProfileStore) ListHouseWorkers(ctx context.Context, userID primitive.ObjectID) ([]models.HouseWorker, error) {
	return findByUser[models.HouseWorker](ctx, s.workers, userID)
}

func (s *MongoProfileStore) SaveResidence(ctx context.Context, r *models.Residence) error {
	r.UpdatedAt = time.Now()
	return upsertByUser(ctx, s.residences, r.UserID, r, "residence")
}

func (s *MongoProfileStore) GetResidence(ctx context.Context, userID primitive.ObjectID) (*models.Residence, error) {
	return findOneByUser[models.Residence](ctx, s.residences, userID)
}

func (s *MongoProfileStore) SaveLandlord(ctx context.Context, l *models.Landlord) error {
	l.UpdatedAt = time.Now()
	return upsertByUser(ctx, s.landlords, l.UserID, l, "landlord")
}

func (s *MongoProfileStore) GetLandlord(ctx context.Context, userID primitive.ObjectID) (*models.Landlord, error) {
	return findOneByUser[models.Landlord](ctx, s.landlords, userID)
}

func (s *MongoProfileStore) AddPreviousLandlord(ctx context.Context, p *models.PreviousLandlord) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	return insertOne(ctx, s.prevLandlords, p, "previous landlord")
}

func (s *MongoProfileStore) ListPreviousLandlords(ctx context.Context, userID primitive.ObjectID) ([]models.PreviousLandlord, error) {
	return findByUser[models.PreviousLandlord](ctx, s.prevLandlords, userID)
}

func (s *MongoProfileStore) AddDocument(ctx context.Context, d *models.DocumentAttachment) error {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	return insertOne(ctx, s.documents, d, "document")
}

func (s *MongoProfileStore) ListDocuments(ctx context.Context, userID primitive.ObjectID) ([]models.DocumentAttachment, error) {
	return findByUser[models.DocumentAttachment](ctx, s.documents, userID)
}

func (s *MongoProfileStore) AddNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	return insertOne(ctx, s.notifications, n, "notification")
}

func (s *MongoProfileStore) ListNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return findByUser[models.Notification](ctx, s.notifications, userID)
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}, what string) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert %s: %w", what, err)
	}
	return nil
}

func findByUser[T any](ctx context.Context, coll *mongo.Collection, userID primitive.ObjectID) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list section: %w", err)
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode section: %w", err)
	}
	return out, nil
}

func findOneByUser[T any](ctx context.Context, coll *mongo.Collection, userID primitive.ObjectID) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to load section: %w", err)
	}
	return &out, nil
}

func upsertByUser(ctx context.Context, coll *mongo.Collection, userID primitive.ObjectID, doc interface{}, what string) error {
	_, err := coll.ReplaceOne(ctx,
		bson.M{"user_id": userID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", what, err)
	}
	return nil
}

// MemoryProfileStore is an in-process profile store for unit tests
type MemoryProfileStore struct {
	mu            sync.RWMutex
	contacts      map[string][]models.EmergencyContact
	family        map[string][]models.FamilyMember
	workers       map[string][]models.HouseWorker
	residences    map[string]*models.Residence
	landlords     map[string]*models.Landlord
	prevLandlords map[string][]models.PreviousLandlord
	documents     map[string][]models.DocumentAttachment
	notifications map[string][]models.Notification
}

// NewMemoryProfileStore creates an empty in-memory profile store
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		contacts:      make(map[string][]models.EmergencyContact),
		family:        make(map[string][]models.FamilyMember),
		workers:       make(map[string][]models.HouseWorker),
		residences:    make(map[string]*models.Residence),
		landlords:     make(map[string]*models.Landlord),
		prevLandlords: make(map[string][]models.PreviousLandlord),
		documents:     make(map[string][]models.DocumentAttachment),
		notifications: make(map[string][]models.Notification),
	}
}

func (s *MemoryProfileStore) AddEmergencyContact(ctx context.Context, c *models.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	key := c.UserID.Hex()
	s.contacts[key] = append(s.contacts[key], *c)
	return nil
}

func (s *MemoryProfileStore) ListEmergencyContacts(ctx context.Context, userID primitive.ObjectID) ([]models.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EmergencyContact(nil), s.contacts[userID.Hex()]...), nil
}

func (s *MemoryProfileStore) AddFamilyMember(ctx context.Context, m *models.FamilyMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	key := m.UserID.Hex()
	s.family[key] = append(s.family[key], *m)
	return nil
}

func (s *MemoryProfileStore) ListFamilyMembers(ctx context.Context, userID primitive.ObjectID) ([]models.FamilyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FamilyMember(nil), s.family[userID.Hex()]...), nil
}

func (s *MemoryProfileStore) AddHouseWorker(ctx context.Context, w *models.HouseWorker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now()
	key := w.UserID.Hex()
	s.workers[key] = append(s.workers[key], *w)
	return nil
}

func (s *MemoryProfileStore) ListHouseWorkers(ctx context.Context, userID primitive.ObjectID) ([]models.HouseWorker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HouseWorker(nil), s.workers[userID.Hex()]...), nil
}

func (s *MemoryProfileStore) SaveResidence(ctx context.Context, r *models.Residence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.UpdatedAt = time.Now()
	stored := *r
	s.residences[r.UserID.Hex()] = &stored
	return nil
}

func (s *MemoryProfileStore) GetResidence(ctx context.Context, userID primitive.ObjectID) (*models.Residence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.residences[userID.Hex()]; ok {
		out := *r
		return &out, nil
	}
	return nil, ErrSectionNotFound
}

func (s *MemoryProfileStore) SaveLandlord(ctx context.Context, l *models.Landlord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	l.UpdatedAt = time.Now()
	stored := *l
	s.landlords[l.UserID.Hex()] = &stored
	return nil
}

func (s *MemoryProfileStore) GetLandlord(ctx context.Context, userID primitive.ObjectID) (*models.Landlord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.landlords[userID.Hex()]; ok {
		out := *l
		return &out, nil
	}
	return nil, ErrSectionNotFound
}

func (s *MemoryProfileStore) AddPreviousLandlord(ctx context.Context, p *models.PreviousLandlord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	key := p.UserID.Hex()
	s.prevLandlords[key] = append(s.prevLandlords[key], *p)
	return nil
}

func (s *MemoryProfileStore) ListPreviousLandlords(ctx context.Context, userID primitive.ObjectID) ([]models.PreviousLandlord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PreviousLandlord(nil), s.prevLandlords[userID.Hex()]...), nil
}

func (s *MemoryProfileStore) AddDocument(ctx context.Context, d *models.DocumentAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	key := d.UserID.Hex()
	s.documents[key] = append(s.documents[key], *d)
	return nil
}

func (s *MemoryProfileStore) ListDocuments(ctx context.Context, userID primitive.ObjectID) ([]models.DocumentAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.DocumentAttachment(nil), s.documents[userID.Hex()]...), nil
}

func (s *MemoryProfileStore) AddNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	key := n.UserID.Hex()
	s.notifications[key] = append(s.notifications[key], *n)
	return nil
}

func (s *MemoryProfileStore) ListNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications[userID.Hex()]...), nil
}
