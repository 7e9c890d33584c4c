package catalog

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/jonathan/favor-advisor/internal/collation"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the root of the public catalog and image host.
const DefaultBaseURL = "https://schaledb.com/"

const (
	studentsPath = "data/jp/students.min.json"
	itemsPath    = "data/jp/items.min.json"
)

// Fetcher retrieves a document body. fetch.Client and fetch.SnapshotFetcher
// implement it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StudentsURL returns the students document URL under baseURL.
func StudentsURL(baseURL string) (string, error) {
	return joinURL(baseURL, studentsPath)
}

// ItemsURL returns the items document URL under baseURL.
func ItemsURL(baseURL string) (string, error) {
	return joinURL(baseURL, itemsPath)
}

func joinURL(baseURL, path string) (string, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.JoinPath(baseURL, path)
	if err != nil {
		return "", fmt.Errorf("failed to build catalog URL: %w", err)
	}
	return u, nil
}

// FromBytes parses raw students and items documents into a Catalog.
func FromBytes(students, items []byte, collator collation.Comparer) (*Catalog, error) {
	characters, err := ParseCharacters(students)
	if err != nil {
		return nil, err
	}
	gifts, err := ParseGifts(items)
	if err != nil {
		return nil, err
	}
	return New(characters, gifts, collator), nil
}

// Load reads the catalog from local students and items files.
func Load(studentsFile, itemsFile string, collator collation.Comparer) (*Catalog, error) {
	students, err := os.ReadFile(studentsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read students file: %w", err)
	}
	items, err := os.ReadFile(itemsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}
	return FromBytes(students, items, collator)
}

// Raw holds the unparsed catalog documents.
type Raw struct {
	Students []byte
	Items    []byte
}

// FetchRaw downloads the students and items documents concurrently.
// Either failure fails the whole fetch.
func FetchRaw(ctx context.Context, fetcher Fetcher, baseURL string) (*Raw, error) {
	studentsURL, err := StudentsURL(baseURL)
	if err != nil {
		return nil, err
	}
	itemsURL, err := ItemsURL(baseURL)
	if err != nil {
		return nil, err
	}

	raw := &Raw{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := fetcher.Fetch(gctx, studentsURL)
		if err != nil {
			return fmt.Errorf("failed to fetch students: %w", err)
		}
		raw.Students = body
		return nil
	})
	g.Go(func() error {
		body, err := fetcher.Fetch(gctx, itemsURL)
		if err != nil {
			return fmt.Errorf("failed to fetch items: %w", err)
		}
		raw.Items = body
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

// Fetch downloads and parses the remote catalog.
func Fetch(ctx context.Context, fetcher Fetcher, baseURL string, collator collation.Comparer) (*Catalog, error) {
	raw, err := FetchRaw(ctx, fetcher, baseURL)
	if err != nil {
		return nil, err
	}
	return FromBytes(raw.Students, raw.Items, collator)
}
