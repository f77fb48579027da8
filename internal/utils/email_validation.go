package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sendgrid/sendgrid-go"
)

const (
	DefaultMXLookupTimeout = 3 * time.Second
	DefaultTransientMXTTL  = 30 * time.Second
	DefaultSendGridTimeout = 5 * time.Second
	sendGridHost           = "https://api.sendgrid.com"
	sendGridValidationPath = "/v3/validations/email"
)

var emailRegex = regexp.MustCompile(
	"(?i)^[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*" +
		"@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+" +
		"[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$",
)

// MXResolver is the subset of *net.Resolver used for domain checks.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// DeliverabilityChecker asks a remote service whether an address can
// receive mail.
type DeliverabilityChecker interface {
	CheckDeliverable(ctx context.Context, email string) (bool, error)
}

type EmailValidatorOptions struct {
	// CheckMX enables the MX record lookup after the syntax checks.
	CheckMX bool
	// Timeout bounds a single MX lookup. Zero means DefaultMXLookupTimeout.
	Timeout time.Duration
	// CacheTTL bounds how long a per-domain MX verdict is kept. Zero keeps
	// verdicts for the life of the process.
	CacheTTL time.Duration
	// TransientTTL is how long a timed-out or temporarily failing domain is
	// treated as invalid before it is queried again. Zero means
	// DefaultTransientMXTTL.
	TransientTTL time.Duration
	// Resolver defaults to net.DefaultResolver.
	Resolver MXResolver
	// Deliverability is optional.
	Deliverability DeliverabilityChecker
}

// EmailValidator checks address syntax and, optionally, that the domain
// publishes MX records. MX verdicts, positive and negative, are cached per
// domain. Safe for concurrent use.
type EmailValidator struct {
	checkMX        bool
	timeout        time.Duration
	ttl            time.Duration
	transientTTL   time.Duration
	resolver       MXResolver
	mxCache        *cache.Cache
	deliverability DeliverabilityChecker
}

func NewEmailValidator(opts EmailValidatorOptions) *EmailValidator {
	v := &EmailValidator{
		checkMX:        opts.CheckMX,
		timeout:        opts.Timeout,
		ttl:            opts.CacheTTL,
		transientTTL:   opts.TransientTTL,
		resolver:       opts.Resolver,
		deliverability: opts.Deliverability,
	}
	if v.timeout <= 0 {
		v.timeout = DefaultMXLookupTimeout
	}
	if v.transientTTL <= 0 {
		v.transientTTL = DefaultTransientMXTTL
	}
	if v.resolver == nil {
		v.resolver = net.DefaultResolver
	}
	if v.ttl <= 0 {
		v.ttl = cache.NoExpiration
		v.mxCache = cache.New(cache.NoExpiration, 0)
	} else {
		v.mxCache = cache.New(v.ttl, 2*v.ttl)
	}
	return v
}

// IsValidEmailSyntax runs the structural checks only.
func IsValidEmailSyntax(email string) bool {
	if !emailRegex.MatchString(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidateEmail reports whether email is acceptable for a new account. Lookup
// and remote-check failures make the address invalid; they are never
// returned.
func (v *EmailValidator) ValidateEmail(ctx context.Context, email string) bool {
	if !IsValidEmailSyntax(email) {
		return false
	}

	if v.checkMX {
		domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
		if !v.hasMX(ctx, domain) {
			return false
		}
	}

	if v.deliverability != nil {
		ok, err := v.deliverability.CheckDeliverable(ctx, email)
		if err != nil {
			Logger.WithError(err).Warn("Email deliverability check failed; treating address as invalid")
			return false
		}
		return ok
	}

	return true
}

func (v *EmailValidator) hasMX(ctx context.Context, domain string) bool {
	if cached, ok := v.mxCache.Get(domain); ok {
		return cached.(bool)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.resolver.LookupMX(lookupCtx, domain)
	if err != nil {
		Logger.WithError(err).WithField("domain", domain).Debug("MX lookup failed")
		if ctx.Err() != nil {
			// The caller gave up; that says nothing about the domain.
			return false
		}
		if isTransientDNSError(err) {
			v.mxCache.Set(domain, false, v.transientTTL)
			return false
		}
		v.mxCache.Set(domain, false, v.ttl)
		return false
	}

	found := len(records) > 0
	v.mxCache.Set(domain, found, v.ttl)
	return found
}

// isTransientDNSError is true for lookup timeouts and temporary resolver
// failures. Their verdict is cached only for the transient TTL.
func isTransientDNSError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	return false
}

// SendGridEmailChecker uses the SendGrid email validation API.
type SendGridEmailChecker struct {
	APIKey string
	// Host overrides the API host; empty means the public SendGrid API.
	Host string
	// Timeout bounds one validation call. Zero means DefaultSendGridTimeout.
	Timeout time.Duration
}

func (c *SendGridEmailChecker) CheckDeliverable(ctx context.Context, email string) (bool, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultSendGridTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	host := c.Host
	if host == "" {
		host = sendGridHost
	}
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return false, err
	}

	req := sendgrid.GetRequest(c.APIKey, sendGridValidationPath, host)
	req.Method = "POST"
	req.Body = body

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return false, fmt.Errorf("sendgrid validation request: %w", err)
	}

	switch resp.StatusCode {
	case 200:
		var sg struct {
			Result struct {
				Verdict string `json:"verdict"`
			} `json:"result"`
		}
		if err := json.Unmarshal([]byte(resp.Body), &sg); err != nil {
			return false, fmt.Errorf("sendgrid JSON decode: %w", err)
		}
		verdict := strings.ToLower(sg.Result.Verdict)
		return verdict == "valid" || verdict == "risky", nil
	case 400:
		return false, nil
	default:
		return false, fmt.Errorf("sendgrid validation failed: status %d", resp.StatusCode)
	}
}
