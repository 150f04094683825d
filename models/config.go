// Package models defines data structures shared across the build pipeline.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig holds all configuration for a dataset build. Values come from a
// YAML config file, CLI flags, or both; flags win.
type RunConfig struct {
	// Language is the wiki language code used to select the dump assets.
	Language string `yaml:"language"`

	// Dest is the root directory of the generated dataset.
	Dest string `yaml:"dest"`

	// IndexRootPath is the URL root prepended to hrefs in generated HTML
	// indices, e.g. "/wiki-categories/".
	IndexRootPath string `yaml:"index_root_path"`

	// ExcludedParents are category ids removed together with their direct
	// subcategories.
	ExcludedParents []uint32 `yaml:"excluded_parents"`

	// ExcludedGrandparents are category ids removed together with their
	// subcategories two levels down.
	ExcludedGrandparents []uint32 `yaml:"excluded_grandparents"`

	// ExcludedArticleCategories are category ids whose member articles are
	// stripped from the whole dataset.
	ExcludedArticleCategories []uint32 `yaml:"excluded_article_categories"`

	// MaxArticlesPerCategory caps the article list of a single category.
	// -1 means unlimited.
	MaxArticlesPerCategory int `yaml:"max_articles_per_category"`

	// BalancingModOperand is the modulus used to assign categories to shard
	// directories.
	BalancingModOperand uint32 `yaml:"balancing_mod_operand"`

	// ArticleCountPercentile (0-100) sets the cutoff below which small
	// categories are pruned.
	ArticleCountPercentile int `yaml:"article_count_percentile"`

	// SampleSeed seeds the article sampling RNG. Zero seeds from entropy,
	// which makes repeated runs non-identical whenever sampling triggers.
	SampleSeed int64 `yaml:"sample_seed"`

	// Workers bounds the export write pool. Zero means runtime.NumCPU.
	Workers int `yaml:"workers"`

	Dev       bool `yaml:"dev"`
	Clean     bool `yaml:"clean"`
	UseCache  bool `yaml:"use_cache"`
	NoIndices bool `yaml:"no_indices"`
}

// DefaultRunConfig returns a RunConfig with the production defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Language:               "en",
		Dest:                   "pages",
		MaxArticlesPerCategory: 1000,
		BalancingModOperand:    2000,
		ArticleCountPercentile: 50,
	}
}

// LoadRunConfig reads a YAML config file on top of the defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	config := DefaultRunConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *RunConfig) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("language must not be empty")
	}
	if c.Dest == "" {
		return fmt.Errorf("dest must not be empty")
	}
	if c.BalancingModOperand == 0 {
		return fmt.Errorf("balancing_mod_operand must be positive")
	}
	if c.ArticleCountPercentile < 0 || c.ArticleCountPercentile > 100 {
		return fmt.Errorf("article_count_percentile must be in [0, 100], got %d", c.ArticleCountPercentile)
	}
	if c.MaxArticlesPerCategory < -1 {
		return fmt.Errorf("max_articles_per_category must be -1 or non-negative, got %d", c.MaxArticlesPerCategory)
	}
	return nil
}
