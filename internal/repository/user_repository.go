package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jobboard/internal/domain"
)

type userRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) domain.UserRepository {
	return &userRepository{col: db.Collection(colUsers)}
}

// GetSummary loads only the display name of the user.
func (r *userRepository) GetSummary(ctx context.Context, id uuid.UUID) (*domain.OwnerSummary, error) {
	var m userModel
	opts := options.FindOne().SetProjection(bson.M{"name": 1})
	err := r.col.FindOne(ctx, bson.M{"_id": id.String()}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("User not found")
		}
		log.Error().Err(err).Str("user_id", id.String()).Msg("failed to load user")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &domain.OwnerSummary{ID: parseID(m.ID), Name: m.Name}, nil
}
