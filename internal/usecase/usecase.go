package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/artemivanov/shortlink/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

type shortLinkRepository interface {
	Save(ctx context.Context, shortCode, originalURL string) (*entity.ShortLink, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.ShortLink, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string) (*entity.ShortLink, error)
	Update(ctx context.Context, shortCode, originalURL string) (*entity.ShortLink, error)
	Remove(ctx context.Context, shortCode string) error
}

func validateOriginalURL(originalURL string) error {
	u, err := url.Parse(originalURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return entity.ErrInvalidURL
	}

	return nil
}

type ShortLinkUseCase struct {
	shortCodeLength int
	linkRepo        shortLinkRepository
}

func NewShortLinkUseCase(shortCodeLength int, linkRepo shortLinkRepository) *ShortLinkUseCase {
	return &ShortLinkUseCase{
		shortCodeLength: shortCodeLength,
		linkRepo:        linkRepo,
	}
}

func (uc *ShortLinkUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.ShortLink, error) {
	const op = "usecase.ShortLinkUseCase.ShortenURL"
	const maxRetries = 5

	if err := validateOriginalURL(originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Each collision widens the code by one character for the next attempt.
	length := uc.shortCodeLength

	for i := 0; i < maxRetries; i++ {
		shortCode, err := gonanoid.New(length)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		link, err := uc.linkRepo.Save(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				length++
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

func (uc *ShortLinkUseCase) GetShortLink(ctx context.Context, shortCode string) (*entity.ShortLink, error) {
	const op = "usecase.ShortLinkUseCase.GetShortLink"

	link, err := uc.linkRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get short link: %w", op, err)
	}

	return link, nil
}

func (uc *ShortLinkUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.ShortLink, error) {
	const op = "usecase.ShortLinkUseCase.ResolveShortCode"

	link, err := uc.linkRepo.RetrieveAndUpdateStats(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return link, nil
}

func (uc *ShortLinkUseCase) ModifyURL(ctx context.Context, shortCode, originalURL string) (*entity.ShortLink, error) {
	const op = "usecase.ShortLinkUseCase.ModifyURL"

	if err := validateOriginalURL(originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link, err := uc.linkRepo.Update(ctx, shortCode, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify url: %w", op, err)
	}

	return link, nil
}

func (uc *ShortLinkUseCase) DeleteShortLink(ctx context.Context, shortCode string) error {
	const op = "usecase.ShortLinkUseCase.DeleteShortLink"

	err := uc.linkRepo.Remove(ctx, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to delete short link: %w", op, err)
	}

	return nil
}
