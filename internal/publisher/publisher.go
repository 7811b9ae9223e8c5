// Package publisher pushes assembled documents to the CMS. It owns the
// create-versus-update decision: drafts already known to the CMS are updated
// in place, everything else goes through create then publish.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/blogsmith/internal/assembler"
	"github.com/jonesrussell/blogsmith/internal/cms"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

// ErrMissingFeaturedImage rejects publication of a document without a
// featured image. The blog layout requires one, so publishing without it
// would produce a broken card on the listing page.
var ErrMissingFeaturedImage = errors.New("featured image is required before publishing")

// Action reports how the document reached the CMS.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Result is the outcome of a successful publication.
type Result struct {
	ExternalID string `json:"external_id"`
	PublicURL  string `json:"public_url,omitempty"`
	Action     Action `json:"action"`
}

// ContentAPI is the slice of the CMS client publishing needs.
type ContentAPI interface {
	CreateDraft(ctx context.Context, post cms.Post) (string, error)
	Update(ctx context.Context, externalID string, post cms.Post) error
	Publish(ctx context.Context, externalID string) error
	GetPublicURL(ctx context.Context, externalID string) (string, error)
}

type Publisher struct {
	api    ContentAPI
	logger logger.Logger
}

func New(api ContentAPI, log logger.Logger) *Publisher {
	return &Publisher{api: api, logger: log}
}

// Publish sends the document to the CMS. When existingExternalID is set the
// entry is updated in place and keeps its handle, so re-publishing an
// already-published draft never creates a second post.
func (p *Publisher) Publish(ctx context.Context, doc assembler.Document, existingExternalID string) (*Result, error) {
	if doc.Metadata.FeaturedImageURL == "" {
		return nil, ErrMissingFeaturedImage
	}

	post := mapDocument(doc)

	if existingExternalID != "" {
		if updateErr := p.api.Update(ctx, existingExternalID, post); updateErr != nil {
			return nil, fmt.Errorf("update entry %s: %w", existingExternalID, updateErr)
		}
		publicURL, urlErr := p.api.GetPublicURL(ctx, existingExternalID)
		if urlErr != nil {
			p.logger.Warn("Could not resolve public URL after update",
				logger.String("external_id", existingExternalID),
				logger.Error(urlErr),
			)
			publicURL = ""
		}
		p.logger.Info("Updated published post",
			logger.String("external_id", existingExternalID),
			logger.String("title", doc.Metadata.Title),
		)
		return &Result{ExternalID: existingExternalID, PublicURL: publicURL, Action: ActionUpdated}, nil
	}

	externalID, createErr := p.api.CreateDraft(ctx, post)
	if createErr != nil {
		return nil, fmt.Errorf("create entry: %w", createErr)
	}
	if publishErr := p.api.Publish(ctx, externalID); publishErr != nil {
		return nil, fmt.Errorf("publish entry %s: %w", externalID, publishErr)
	}

	publicURL, urlErr := p.api.GetPublicURL(ctx, externalID)
	if urlErr != nil {
		p.logger.Warn("Could not resolve public URL after publish",
			logger.String("external_id", externalID),
			logger.Error(urlErr),
		)
		publicURL = ""
	}

	p.logger.Info("Published new post",
		logger.String("external_id", externalID),
		logger.String("public_url", publicURL),
		logger.String("title", doc.Metadata.Title),
	)
	return &Result{ExternalID: externalID, PublicURL: publicURL, Action: ActionCreated}, nil
}

func mapDocument(doc assembler.Document) cms.Post {
	return cms.Post{
		Title:            doc.Metadata.Title,
		Slug:             doc.Metadata.Slug,
		Body:             doc.Content,
		Excerpt:          doc.Metadata.Excerpt,
		SEOTitle:         doc.Metadata.SEOTitle,
		SEODescription:   doc.Metadata.SEODescription,
		Keywords:         doc.Metadata.SEOKeywords,
		FeaturedImageURL: doc.Metadata.FeaturedImageURL,
		Author:           doc.Metadata.Author,
		Category:         doc.Metadata.Category,
		Featured:         doc.Metadata.Featured,
		WordCount:        doc.WordCount,
		ReadTime:         doc.Metadata.ReadTime,
		FAQs:             doc.Metadata.FAQs,
		Checklist:        doc.Metadata.Checklist,
		OutboundLinks:    doc.Metadata.OutboundLinks,
		PublishDate:      doc.Metadata.PublishDate,
	}
}
