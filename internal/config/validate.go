package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/insert-this/internal/parser"
	"github.com/mvp-joe/insert-this/internal/span"
)

var (
	// ErrUnknownLanguage indicates a language id other than the JS/TS ids
	ErrUnknownLanguage = errors.New("unknown language id")

	// ErrInvalidGlob indicates a language glob that does not compile
	ErrInvalidGlob = errors.New("invalid glob pattern")

	// ErrEmptyFallback indicates a missing fallback identifier
	ErrEmptyFallback = errors.New("empty fallback name")

	// ErrInvalidEncoding indicates an unsupported position encoding
	ErrInvalidEncoding = errors.New("invalid position encoding")

	// ErrInvalidTemplate indicates a JSX template without exactly one %s
	ErrInvalidTemplate = errors.New("invalid jsx template")

	// ErrInvalidVerbosity indicates a negative log verbosity
	ErrInvalidVerbosity = errors.New("invalid log verbosity")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateLanguages(cfg.Languages); err != nil {
		errs = append(errs, err)
	}

	if err := validateNaming(&cfg.Naming); err != nil {
		errs = append(errs, err)
	}

	if err := validateInsert(&cfg.Insert); err != nil {
		errs = append(errs, err)
	}

	if cfg.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("%w: verbosity cannot be negative, got %d", ErrInvalidVerbosity, cfg.Log.Verbosity))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLanguages(languages map[string][]string) error {
	var errs []error

	for id, patterns := range languages {
		if !parser.Supported(id) {
			errs = append(errs, fmt.Errorf("%w: %s (valid: typescript, typescriptreact, javascript, javascriptreact)", ErrUnknownLanguage, id))
			continue
		}
		for _, pattern := range patterns {
			if _, err := glob.Compile(pattern, '/'); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %q: %v", ErrInvalidGlob, id, pattern, err))
			}
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateNaming(cfg *NamingConfig) error {
	if strings.TrimSpace(cfg.Fallback) == "" {
		return fmt.Errorf("%w: fallback is required", ErrEmptyFallback)
	}
	return nil
}

func validateInsert(cfg *InsertConfig) error {
	var errs []error

	if _, err := span.ParseEncoding(cfg.PositionEncoding); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'utf-16', 'utf-8' or 'utf-32', got '%s'", ErrInvalidEncoding, cfg.PositionEncoding))
	}

	if n := strings.Count(cfg.JSXTemplate, "%s"); n != 1 || strings.Count(cfg.JSXTemplate, "%") != 1 {
		errs = append(errs, fmt.Errorf("%w: jsx_template needs exactly one %%s and no other verbs, got %q", ErrInvalidTemplate, cfg.JSXTemplate))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear
// formatting. Every error stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}

	return fmt.Errorf("validation failed:"+strings.Repeat("\n  - %w", len(errs)), args...)
}
