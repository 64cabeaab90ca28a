package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Role         string    `bson:"role"`
	ManagerID    string    `bson:"manager_id,omitempty"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type perimeterDoc struct {
	ID           string         `bson:"_id"`
	OwnerID      string         `bson:"owner_id"`
	Center       geo.Coordinate `bson:"center"`
	RadiusMeters float64        `bson:"radius_meters"`
	Address      string         `bson:"address"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

type shiftDoc struct {
	ID               string          `bson:"_id"`
	WorkerID         string          `bson:"worker_id"`
	ClockInTime      time.Time       `bson:"clock_in_time"`
	ClockInLocation  geo.Coordinate  `bson:"clock_in_location"`
	ClockInNotes     string          `bson:"clock_in_notes"`
	ClockOutTime     *time.Time      `bson:"clock_out_time,omitempty"`
	ClockOutLocation *geo.Coordinate `bson:"clock_out_location,omitempty"`
	ClockOutNotes    string          `bson:"clock_out_notes,omitempty"`
	Status           string          `bson:"status"`
	CreatedAt        time.Time       `bson:"created_at"`
	UpdatedAt        time.Time       `bson:"updated_at"`
}

// MongoStore implements Store on MongoDB
type MongoStore struct {
	client     *mongo.Client
	db         *mongo.Database
	users      *mongo.Collection
	perimeters *mongo.Collection
	shifts     *mongo.Collection
}

// NewMongoStore connects, pings and ensures indexes
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:     client,
		db:         db,
		users:      db.Collection("users"),
		perimeters: db.Collection("perimeters"),
		shifts:     db.Collection("shifts"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	if _, err := s.perimeters.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create perimeters indexes: %w", err)
	}

	if _, err := s.shifts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "worker_id", Value: 1}},
			Options: options.Index().
				SetName("one_active_shift_per_worker").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(models.StatusClockedIn)}),
		},
		{Keys: bson.D{{Key: "worker_id", Value: 1}, {Key: "clock_in_time", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "clock_in_time", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create shifts indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc := userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		ManagerID:    u.ManagerID,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mongoNotFound(err, "find user")
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

func (s *MongoStore) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	count, err := s.users.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *MongoStore) UpsertPerimeter(ctx context.Context, p *models.Perimeter) error {
	now := time.Now().UTC()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	update := bson.M{
		"$set": bson.M{
			"center":        p.Center,
			"radius_meters": p.RadiusMeters,
			"address":       p.Address,
			"updated_at":    p.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        p.ID,
			"created_at": createdAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc perimeterDoc
	if err := s.perimeters.FindOneAndUpdate(ctx, bson.M{"owner_id": p.OwnerID}, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("upsert perimeter: %w", err)
	}
	*p = doc.model()
	return nil
}

func (s *MongoStore) FindPerimeterByOwner(ctx context.Context, ownerID string) (*models.Perimeter, error) {
	var doc perimeterDoc
	if err := s.perimeters.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&doc); err != nil {
		return nil, mongoNotFound(err, "find perimeter")
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoStore) FirstPerimeter(ctx context.Context) (*models.Perimeter, error) {
	var doc perimeterDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err := s.perimeters.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		return nil, mongoNotFound(err, "find first perimeter")
	}
	p := doc.model()
	return &p, nil
}

// CreateShift relies on the partial unique index on worker_id for clocked-in shifts
func (s *MongoStore) CreateShift(ctx context.Context, sh *models.Shift) error {
	now := time.Now().UTC()
	sh.ClockInTime = sh.ClockInTime.UTC()
	sh.CreatedAt, sh.UpdatedAt = now, now

	if _, err := s.shifts.InsertOne(ctx, shiftDocFrom(sh)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrActiveShiftExists
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

func (s *MongoStore) FindShift(ctx context.Context, id string) (*models.Shift, error) {
	var doc shiftDoc
	if err := s.shifts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mongoNotFound(err, "find shift")
	}
	sh := doc.model()
	return &sh, nil
}

func (s *MongoStore) CompleteShift(ctx context.Context, shiftID, workerID string, out models.ClockOut) (*models.Shift, error) {
	outTime := out.Time.UTC()
	loc := out.Location
	filter := bson.M{"_id": shiftID, "worker_id": workerID, "status": string(models.StatusClockedIn)}
	update := bson.M{"$set": bson.M{
		"clock_out_time":     outTime,
		"clock_out_location": loc,
		"clock_out_notes":    out.Notes,
		"status":             string(models.StatusClockedOut),
		"updated_at":         time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc shiftDoc
	err := s.shifts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotClockedIn
	}
	if err != nil {
		return nil, fmt.Errorf("complete shift: %w", err)
	}
	sh := doc.model()
	return &sh, nil
}

func (s *MongoStore) FindActiveShift(ctx context.Context, workerID string) (*models.Shift, error) {
	var doc shiftDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "clock_in_time", Value: -1}})
	filter := bson.M{"worker_id": workerID, "status": string(models.StatusClockedIn)}
	if err := s.shifts.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, mongoNotFound(err, "find active shift")
	}
	sh := doc.model()
	return &sh, nil
}

func (s *MongoStore) ListShiftsByWorker(ctx context.Context, workerID string) ([]models.Shift, error) {
	return s.findShifts(ctx, bson.M{"worker_id": workerID}, bson.D{{Key: "clock_in_time", Value: -1}})
}

func (s *MongoStore) ListActiveShifts(ctx context.Context) ([]models.Shift, error) {
	return s.findShifts(ctx, bson.M{"status": string(models.StatusClockedIn)}, bson.D{{Key: "clock_in_time", Value: 1}})
}

func (s *MongoStore) ListShifts(ctx context.Context) ([]models.Shift, error) {
	return s.findShifts(ctx, bson.M{}, bson.D{{Key: "worker_id", Value: 1}, {Key: "clock_in_time", Value: 1}})
}

func (s *MongoStore) ListCompletedShiftsSince(ctx context.Context, since time.Time) ([]models.Shift, error) {
	filter := bson.M{
		"clock_in_time":  bson.M{"$gte": since.UTC()},
		"clock_out_time": bson.M{"$ne": nil},
	}
	return s.findShifts(ctx, filter, bson.D{{Key: "clock_in_time", Value: 1}})
}

func (s *MongoStore) findShifts(ctx context.Context, filter bson.M, sort bson.D) ([]models.Shift, error) {
	cursor, err := s.shifts.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find shifts: %w", err)
	}
	var docs []shiftDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode shifts: %w", err)
	}
	shifts := make([]models.Shift, 0, len(docs))
	for _, d := range docs {
		shifts = append(shifts, d.model())
	}
	return shifts, nil
}

// Drop removes the whole database. Tests use it to clean up.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mongoNotFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Role:         models.Role(d.Role),
		ManagerID:    d.ManagerID,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func (d perimeterDoc) model() models.Perimeter {
	return models.Perimeter{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Center:       d.Center,
		RadiusMeters: d.RadiusMeters,
		Address:      d.Address,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func shiftDocFrom(s *models.Shift) shiftDoc {
	return shiftDoc{
		ID:               s.ID,
		WorkerID:         s.WorkerID,
		ClockInTime:      s.ClockInTime,
		ClockInLocation:  s.ClockInLocation,
		ClockInNotes:     s.ClockInNotes,
		ClockOutTime:     s.ClockOutTime,
		ClockOutLocation: s.ClockOutLocation,
		ClockOutNotes:    s.ClockOutNotes,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (d shiftDoc) model() models.Shift {
	s := models.Shift{
		ID:               d.ID,
		WorkerID:         d.WorkerID,
		ClockInTime:      d.ClockInTime.UTC(),
		ClockInLocation:  d.ClockInLocation,
		ClockInNotes:     d.ClockInNotes,
		ClockOutLocation: d.ClockOutLocation,
		ClockOutNotes:    d.ClockOutNotes,
		Status:           models.ShiftStatus(d.Status),
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	if d.ClockOutTime != nil {
		t := d.ClockOutTime.UTC()
		s.ClockOutTime = &t
	}
	return s
}
