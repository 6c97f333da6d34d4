package kenosha

import (
	"bytes"
	"context"
	"fmt"
	"kenosha-results/lib/restyutil"
	"kenosha-results/lib/telemetry"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseUrl          = "https://apps.kenoshacounty.org/ElectionResults_v2"
	DefaultElectionId       = 64
	DefaultSeedMunicipality = "City of Kenosha"
	DefaultDelay            = time.Second
	DefaultTimeout          = time.Second * 30

	municipalityPage   = "/Municipality.aspx"
	reportingUnitsPage = "/ReportingUnits.aspx"
)

type ClientOptions struct {
	BaseUrl    string
	ElectionId int
	// SeedMunicipality is the municipality whose listing page is used to
	// discover every other municipality.
	SeedMunicipality string
	// Delay is the minimum pause between a response coming back and the
	// next request going out, 0 disables it.
	Delay   time.Duration
	Timeout time.Duration
	// Retries is the amount of times a request is retried on a 5xx or
	// transport error.
	Retries int
	Tel     telemetry.API
	// HttpDump receives every request/response pair if set.
	HttpDump restyutil.InstrumentOutput
}

// Client fetches and parses pages of the county election results site.
// Requests are made one at a time and spaced out by Delay.
type Client struct {
	BaseUrl          string
	ElectionId       int
	SeedMunicipality string

	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.SeedMunicipality == "" {
		opts.SeedMunicipality = DefaultSeedMunicipality
	}
	if opts.ElectionId <= 0 {
		return nil, fmt.Errorf("invalid election id %d", opts.ElectionId)
	}
	if opts.Delay < 0 {
		return nil, fmt.Errorf("invalid delay %s", opts.Delay)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	tel := opts.Tel
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("kenosha_scraper", tel)

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetRetryCount(opts.Retries)
	httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() >= 500
	})

	pace := newPacer(opts.Delay)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return pace.wait(req.Context())
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, _ *resty.Response) error {
		pace.done()
		return nil
	})
	httpClient.OnError(func(_ *resty.Request, _ error) {
		pace.done()
	})

	telemetry.InstrumentResty(httpClient, tracer, tel)
	restyutil.InstrumentClient(httpClient, opts.HttpDump)

	return &Client{
		BaseUrl:          opts.BaseUrl,
		ElectionId:       opts.ElectionId,
		SeedMunicipality: opts.SeedMunicipality,
		http:             httpClient,
		tel:              tel,
	}, nil
}

func (c *Client) fetch(ctx context.Context, page string, query map[string]string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(page)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", page, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, &StatusError{
			Url:        res.Request.URL,
			StatusCode: res.StatusCode(),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, fmt.Errorf("parse: %w", err), page)
		return nil, err
	}
	return doc, nil
}

func (c *Client) electionId() string {
	return fmt.Sprint(c.ElectionId)
}
