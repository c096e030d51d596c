package goldcard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"booking-server/api"
	"booking-server/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var ErrNoGoldCardPage = errors.New("supplier has no gold card page")

var (
	statusSelectors   = []string{".goldcard-status", "#goldcard-status", ".card-status", ".status"}
	holderSelectors   = []string{".goldcard-holder", "#goldcard-holder", ".card-holder", ".holder"}
	discountSelectors = []string{".goldcard-discount", "#goldcard-discount", ".card-discount", ".discount"}

	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	numberPattern  = regexp.MustCompile(`^[A-Za-z0-9-]{3,32}$`)
)

// GoldCardAPI looks gold card numbers up on a supplier's discount page.
type GoldCardAPI interface {
	Lookup(ctx context.Context, supplier *models.Supplier, number string) (*models.GoldCardLookup, error)
}

// GoldCardClient scrapes the supplier's gold card page.
type GoldCardClient struct {
	*api.HTTPClient
	logger *zap.Logger
}

// NewGoldCardClient creates a client; the page URL comes from each supplier,
// so httpClient normally has an empty BaseURL.
func NewGoldCardClient(httpClient *api.HTTPClient, logger *zap.Logger) *GoldCardClient {
	return &GoldCardClient{HTTPClient: httpClient, logger: logger}
}

// Lookup fetches the page for number. Malformed numbers and unreadable pages
// come back as an invalid card rather than an error.
func (c *GoldCardClient) Lookup(ctx context.Context, supplier *models.Supplier, number string) (*models.GoldCardLookup, error) {
	number = strings.TrimSpace(number)
	result := &models.GoldCardLookup{Number: number}
	if supplier == nil || supplier.GoldCardURL == "" {
		return nil, ErrNoGoldCardPage
	}
	if !numberPattern.MatchString(number) {
		return result, nil
	}

	endpoint := supplier.GoldCardURL
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	endpoint += sep + url.Values{"number": {number}}.Encode()

	body, err := c.Do(ctx, http.MethodGet, endpoint, map[string]string{"Accept": "text/html"}, nil)
	if err != nil {
		return nil, fmt.Errorf("gold card lookup for %s: %w", supplier.Slug, err)
	}

	parsed, err := ParseGoldCardPage(body)
	if err != nil {
		c.logger.Warn("[GoldCardClient] unreadable gold card page",
			zap.String("supplier", supplier.Slug), zap.Error(err))
		return result, nil
	}
	parsed.Number = number
	c.logger.Debug("[GoldCardClient] gold card looked up",
		zap.String("supplier", supplier.Slug),
		zap.Bool("valid", parsed.Valid),
		zap.Float64("discount", parsed.DiscountPercent))
	return parsed, nil
}

// ParseGoldCardPage reads card status, holder and discount from the page.
func ParseGoldCardPage(html []byte) (*models.GoldCardLookup, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	result := &models.GoldCardLookup{}
	status := strings.ToLower(firstText(doc, statusSelectors))
	result.Valid = status != "" && strings.Contains(status, "valid") &&
		!strings.Contains(status, "invalid") && !strings.Contains(status, "not valid")
	if !result.Valid {
		return result, nil
	}

	result.Holder = firstText(doc, holderSelectors)
	if m := percentPattern.FindStringSubmatch(firstText(doc, discountSelectors)); m != nil {
		result.DiscountPercent, _ = strconv.ParseFloat(m[1], 64)
	}
	return result, nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}
