package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carhive/carhive-be/internal/apierr"
	"github.com/carhive/carhive-be/internal/models"
)

// CarInput carries the mutable fields of a car for create and update.
type CarInput struct {
	Title       string
	Description string
	Images      []string
	Tags        []string
}

func (in CarInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apierr.New(apierr.InvalidInput, "Title is required")
	}
	if len(in.Images) > models.MaxCarImages {
		return apierr.New(apierr.InvalidInput, fmt.Sprintf("A car can have at most %d images", models.MaxCarImages))
	}
	return nil
}

// CarServiceProvider defines the interface for car services.
type CarServiceProvider interface {
	Create(userID string, input CarInput) (models.Car, error)
	ListByOwner(userID string) ([]models.Car, error)
	Get(id, userID string) (models.Car, error)
	Update(id, userID string, input CarInput) (models.Car, error)
	Delete(id, userID string) error
}

// CarService provides owner-scoped CRUD over the cars table.
type CarService struct {
	db *sql.DB
}

// NewCarService creates a new CarService.
func NewCarService(db *sql.DB) *CarService {
	return &CarService{db: db}
}

// Create persists a new car owned by userID.
func (s *CarService) Create(userID string, input CarInput) (models.Car, error) {
	if err := input.validate(); err != nil {
		return models.Car{}, err
	}

	car := models.Car{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Images:      emptyIfNil(input.Images),
		Tags:        emptyIfNil(input.Tags),
		UserID:      userID,
		CreatedAt:   fromMillis(toMillis(time.Now())),
	}

	imagesJSON, tagsJSON, err := marshalLists(car.Images, car.Tags)
	if err != nil {
		return models.Car{}, apierr.Wrap(apierr.Internal, "failed to encode car fields", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO cars(id, title, description, images_json, tags_json, user_id, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		car.ID, car.Title, car.Description, imagesJSON, tagsJSON, car.UserID, toMillis(car.CreatedAt),
	)
	if err != nil {
		return models.Car{}, apierr.Wrap(apierr.Internal, "failed to create car", err)
	}
	return car, nil
}

// ListByOwner returns all cars owned by userID, newest first.
func (s *CarService) ListByOwner(userID string) ([]models.Car, error) {
	rows, err := s.db.Query(
		"SELECT id, title, description, images_json, tags_json, user_id, created_at FROM cars WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID,
	)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, "failed to list cars", err)
	}
	defer rows.Close()

	cars := []models.Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, apierr.Wrap(apierr.Internal, "failed to scan car", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Wrap(apierr.Internal, "failed to list cars", err)
	}
	return cars, nil
}

// Get returns a single car after the ownership gate passes.
func (s *CarService) Get(id, userID string) (models.Car, error) {
	return s.ownedCar(id, userID)
}

// Update replaces a car's mutable fields wholesale. The owner reference is
// never altered.
func (s *CarService) Update(id, userID string, input CarInput) (models.Car, error) {
	if err := input.validate(); err != nil {
		return models.Car{}, err
	}

	car, err := s.ownedCar(id, userID)
	if err != nil {
		return models.Car{}, err
	}

	imagesJSON, tagsJSON, err := marshalLists(input.Images, input.Tags)
	if err != nil {
		return models.Car{}, apierr.Wrap(apierr.Internal, "failed to encode car fields", err)
	}

	_, err = s.db.Exec(
		"UPDATE cars SET title = ?, description = ?, images_json = ?, tags_json = ? WHERE id = ?",
		input.Title, input.Description, imagesJSON, tagsJSON, id,
	)
	if err != nil {
		return models.Car{}, apierr.Wrap(apierr.Internal, "failed to update car", err)
	}

	car.Title = input.Title
	car.Description = input.Description
	car.Images = emptyIfNil(input.Images)
	car.Tags = emptyIfNil(input.Tags)
	return car, nil
}

// Delete removes a car after the ownership gate passes.
func (s *CarService) Delete(id, userID string) error {
	if _, err := s.ownedCar(id, userID); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM cars WHERE id = ?", id); err != nil {
		return apierr.Wrap(apierr.Internal, "failed to delete car", err)
	}
	return nil
}

// ownedCar is the single ownership gate shared by Get, Update and Delete:
// load the car, report NotFound if it is absent, then Forbidden if it
// belongs to someone else. The check runs on every request.
func (s *CarService) ownedCar(id, userID string) (models.Car, error) {
	row := s.db.QueryRow(
		"SELECT id, title, description, images_json, tags_json, user_id, created_at FROM cars WHERE id = ?",
		id,
	)
	car, err := scanCar(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Car{}, apierr.New(apierr.NotFound, "Car not found")
		}
		return models.Car{}, apierr.Wrap(apierr.Internal, "failed to load car", err)
	}
	if car.UserID != userID {
		return models.Car{}, apierr.New(apierr.Forbidden, "Forbidden")
	}
	return car, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (models.Car, error) {
	var car models.Car
	var imagesJSON, tagsJSON string
	var createdAt int64
	err := row.Scan(&car.ID, &car.Title, &car.Description, &imagesJSON, &tagsJSON, &car.UserID, &createdAt)
	if err != nil {
		return models.Car{}, err
	}
	if err := json.Unmarshal([]byte(imagesJSON), &car.Images); err != nil {
		return models.Car{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &car.Tags); err != nil {
		return models.Car{}, err
	}
	car.CreatedAt = fromMillis(createdAt)
	return car, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func marshalLists(images, tags []string) (string, string, error) {
	images = emptyIfNil(images)
	tags = emptyIfNil(tags)
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return "", "", err
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", err
	}
	return string(imagesJSON), string(tagsJSON), nil
}
