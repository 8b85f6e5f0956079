package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/internal/translator"
	"github.com/MimeLyc/bilingual-news/pkg/log"
)

type articleTranslator interface {
	TranslateBidirectional(ctx context.Context, req translator.Request) (translator.Result, error)
}

// Executor runs one retranslation job: it translates the operator-written
// side of the article again and, on a real translation, replaces the
// machine-translated side.
type Executor struct {
	store      news.Store
	translator articleTranslator
}

func NewExecutor(store news.Store, t articleTranslator) *Executor {
	return &Executor{store: store, translator: t}
}

func (e *Executor) Execute(ctx context.Context, job *jobs.RetranslationJob) error {
	id := job.Payload.ArticleID
	article, err := e.store.GetArticle(ctx, id)
	if errors.Is(err, news.ErrNotFound) {
		return fmt.Errorf("%w: article %d no longer exists", jobs.ErrSkip, id)
	}
	if err != nil {
		return fmt.Errorf("load article %d: %w", id, err)
	}
	if !article.NeedsTranslation && job.Source != SourceManual {
		return fmt.Errorf("%w: article %d is already translated", jobs.ErrSkip, id)
	}

	direction, err := jobDirection(job.Payload, article)
	if err != nil {
		return err
	}

	req := requestFor(article, direction)
	res, err := e.translator.TranslateBidirectional(ctx, req)
	if err != nil {
		return fmt.Errorf("translate article %d: %w", id, err)
	}
	if res.IsFallback {
		return fmt.Errorf("translation unavailable for article %d: %s", id, res.FallbackReason)
	}
	for _, w := range res.Warnings {
		log.Warn("Article %d translation warning: %s", id, w)
	}

	if err := e.store.UpdateArticleTranslation(ctx, id, updateFor(article, direction, res)); err != nil {
		return fmt.Errorf("store translation of article %d: %w", id, err)
	}
	log.Info("Article %d retranslated (%s)", id, direction)
	return nil
}

// jobDirection prefers the direction carried by the job and otherwise
// translates away from the article's source language.
func jobDirection(payload jobs.JobPayload, article *news.Article) (translator.Direction, error) {
	if payload.Direction != "" {
		d, err := translator.ParseDirection(payload.Direction)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", jobs.ErrSkip, err)
		}
		return d, nil
	}
	if article.SourceLanguage == news.LanguageTelugu {
		return translator.TeluguToEnglish, nil
	}
	return translator.EnglishToTelugu, nil
}

func requestFor(a *news.Article, direction translator.Direction) translator.Request {
	if direction == translator.TeluguToEnglish {
		return translator.Request{
			SourceTitle:   a.TeluguTitle,
			SourceContent: a.TeluguContent,
			SourceTags:    a.TeluguTags,
			Direction:     direction,
		}
	}
	return translator.Request{
		SourceTitle:   a.EnglishTitle,
		SourceContent: a.EnglishContent,
		SourceTags:    a.EnglishTags,
		Direction:     direction,
	}
}

func updateFor(a *news.Article, direction translator.Direction, res translator.Result) news.TranslationUpdate {
	if direction == translator.TeluguToEnglish {
		return news.TranslationUpdate{
			EnglishTitle:   res.TargetTitle,
			EnglishContent: res.TargetContent,
			EnglishTags:    res.TargetTags,
			TeluguTitle:    a.TeluguTitle,
			TeluguContent:  a.TeluguContent,
			TeluguTags:     res.SourceTags,
		}
	}
	return news.TranslationUpdate{
		EnglishTitle:   a.EnglishTitle,
		EnglishContent: a.EnglishContent,
		EnglishTags:    res.SourceTags,
		TeluguTitle:    res.TargetTitle,
		TeluguContent:  res.TargetContent,
		TeluguTags:     res.TargetTags,
	}
}
