// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package recipeimport scrapes a public recipe URL into raw ingredient
// and step text lines for a CreateRecipe draft, adapted from the teacher's HTML
// scraper to feed the event-sourced recipe aggregate instead of a CRUD
// row.
package recipeimport

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Draft is the scraped shell a caller turns into a CreateRecipe command,
// not a persisted recipe itself — tagging and course assignment remain
// the user's or the tagging package's job.
type Draft struct {
	Name          string
	Ingredients   []string
	Steps         []string
	PrepMinutes   int
	CookMinutes   int
	SourceURL     string
	SourceDomain  string
}

// Scraper fetches and extracts recipe drafts from public URLs.
type Scraper struct {
	client *resty.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		client: resty.New().
			SetTimeout(30_000_000_000).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; MealKitBot/1.0)"),
	}
}

// Fetch retrieves and parses url into a Draft, trying schema.org JSON-LD
// first and falling back to common HTML selector patterns.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Draft, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch recipe url: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("recipe url returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse recipe html: %w", err)
	}

	draft := tryJSONLD(doc)
	if draft == nil {
		draft = tryCommonPatterns(doc)
	}
	if draft == nil {
		return nil, fmt.Errorf("could not extract a recipe from %s", url)
	}

	draft.SourceURL = url
	draft.SourceDomain = extractDomain(url)
	return draft, nil
}

func tryJSONLD(doc *goquery.Document) *Draft {
	var draft *Draft
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true
		}

		var recipeData map[string]interface{}
		if data["@type"] == "Recipe" {
			recipeData = data
		} else if graph, ok := data["@graph"].([]interface{}); ok {
			for _, item := range graph {
				if itemMap, ok := item.(map[string]interface{}); ok && itemMap["@type"] == "Recipe" {
					recipeData = itemMap
					break
				}
			}
		}
		if recipeData == nil {
			return true
		}
		draft = parseJSONLDRecipe(recipeData)
		return false
	})
	return draft
}

func parseJSONLDRecipe(data map[string]interface{}) *Draft {
	d := &Draft{}

	if name, ok := data["name"].(string); ok {
		d.Name = name
	}
	if prepTime, ok := data["prepTime"].(string); ok {
		d.PrepMinutes = parseISO8601Duration(prepTime)
	}
	if cookTime, ok := data["cookTime"].(string); ok {
		d.CookMinutes = parseISO8601Duration(cookTime)
	}
	if ingredients, ok := data["recipeIngredient"].([]interface{}); ok {
		for _, ing := range ingredients {
			if ingStr, ok := ing.(string); ok {
				d.Ingredients = append(d.Ingredients, ingStr)
			}
		}
	}
	if instData, ok := data["recipeInstructions"].([]interface{}); ok {
		for _, inst := range instData {
			if instStr, ok := inst.(string); ok {
				d.Steps = append(d.Steps, instStr)
			} else if instMap, ok := inst.(map[string]interface{}); ok {
				if text, ok := instMap["text"].(string); ok {
					d.Steps = append(d.Steps, text)
				}
			}
		}
	} else if instStr, ok := data["recipeInstructions"].(string); ok {
		d.Steps = append(d.Steps, instStr)
	}

	if d.Name == "" {
		return nil
	}
	return d
}

func tryCommonPatterns(doc *goquery.Document) *Draft {
	d := &Draft{}

	titleSelectors := []string{"h1.recipe-title", "h1.entry-title", ".recipe-header h1", "h1[itemprop='name']", "h1"}
	for _, sel := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(sel).First().Text()); title != "" {
			d.Name = title
			break
		}
	}

	ingredientSelectors := []string{".recipe-ingredients li", ".ingredients li", "[itemprop='recipeIngredient']", ".ingredient"}
	for _, sel := range ingredientSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				d.Ingredients = append(d.Ingredients, text)
			}
		})
		if len(d.Ingredients) > 0 {
			break
		}
	}

	stepSelectors := []string{".recipe-instructions li", ".instructions li", "[itemprop='recipeInstructions'] li", ".recipe-steps li"}
	for _, sel := range stepSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				d.Steps = append(d.Steps, text)
			}
		})
		if len(d.Steps) > 0 {
			break
		}
	}

	if d.Name == "" {
		return nil
	}
	return d
}

func parseISO8601Duration(duration string) int {
	duration = strings.ToUpper(duration)
	if !strings.HasPrefix(duration, "PT") {
		return 0
	}
	duration = strings.TrimPrefix(duration, "PT")

	minutes := 0
	if idx := strings.Index(duration, "H"); idx != -1 {
		if hours, err := strconv.Atoi(duration[:idx]); err == nil {
			minutes += hours * 60
		}
		duration = duration[idx+1:]
	}
	if idx := strings.Index(duration, "M"); idx != -1 {
		if mins, err := strconv.Atoi(duration[:idx]); err == nil {
			minutes += mins
		}
	}
	return minutes
}

func extractDomain(url string) string {
	if idx := strings.Index(url, "://"); idx != -1 {
		url = url[idx+3:]
	}
	if idx := strings.Index(url, "/"); idx != -1 {
		url = url[:idx]
	}
	return strings.TrimPrefix(url, "www.")
}
