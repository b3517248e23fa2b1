package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/job-portal/internal/domain"
)

// HiringManagerDirectory reads externally owned verification state.
// The portal never writes it.
type HiringManagerDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.HiringManager, error)
}

type redisHiringManagerDirectory struct {
	client *redis.Client
	prefix string
}

// NewRedisHiringManagerDirectory reads hashes at <prefix><id> with a
// "verification_status" field.
func NewRedisHiringManagerDirectory(client *redis.Client, prefix string) HiringManagerDirectory {
	return &redisHiringManagerDirectory{client: client, prefix: prefix}
}

const verificationField = "verification_status"

func (d *redisHiringManagerDirectory) GetByID(ctx context.Context, id string) (*domain.HiringManager, error) {
	val, err := d.client.HGet(ctx, d.prefix+id, verificationField).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &domain.HiringManager{
		ID:                 id,
		VerificationStatus: parseVerificationStatus(val),
	}, nil
}

func parseVerificationStatus(raw string) domain.VerificationStatus {
	switch domain.VerificationStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.VerificationVerified:
		return domain.VerificationVerified
	case domain.VerificationSuspended:
		return domain.VerificationSuspended
	default:
		return domain.VerificationUnverified
	}
}
