package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/GriffinCanCode/linksan/internal/domain/rules"
)

// RulesResponse describes the active rule set
type RulesResponse struct {
	rules.Stats
	ReloadEnabled          bool     `json:"reload_enabled"`
	TrackingParameterNames []string `json:"tracking_parameter_names,omitempty"`
	DomainNames            []string `json:"domain_names,omitempty"`
}

// DomainRuleResponse describes one domain override
type DomainRuleResponse struct {
	Domain            string   `json:"domain"`
	RegistrableDomain string   `json:"registrable_domain,omitempty"`
	Keep              []string `json:"keep"`
	Remove            []string `json:"remove"`
}

// Rules reports the active rule set. With verbose=true the parameter and
// domain lists are included.
func (h *Handlers) Rules(c *gin.Context) {
	set := h.sanitizer.Rules()
	resp := RulesResponse{
		Stats:         set.Stats(),
		ReloadEnabled: h.refresher.Enabled(),
	}

	if verbose, _ := strconv.ParseBool(c.Query("verbose")); verbose {
		resp.TrackingParameterNames = set.TrackingParameters()
		resp.DomainNames = set.Domains()
	}

	c.JSON(http.StatusOK, resp)
}

// DomainRule returns the override for one domain
func (h *Handlers) DomainRule(c *gin.Context) {
	domain := c.Param("domain")

	if err := validateDomain(domain); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	normalized := rules.NormalizeDomain(domain)
	registrable := registrableDomain(normalized)

	// Rules match the exact host, so a miss on a subdomain is reported with
	// the registrable domain to look up instead.
	rule, ok := h.sanitizer.Rules().Rule(domain)
	if !ok {
		resp := gin.H{"error": "no rule for domain"}
		if registrable != "" && registrable != normalized {
			resp["registrable_domain"] = registrable
		}
		c.JSON(http.StatusNotFound, resp)
		return
	}

	c.JSON(http.StatusOK, DomainRuleResponse{
		Domain:            normalized,
		RegistrableDomain: registrable,
		Keep:              rule.Keep(),
		Remove:            rule.Remove(),
	})
}

func registrableDomain(domain string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return ""
	}
	return etld1
}

// ReloadRules loads the configured rule files and publishes them. The
// current rules stay active when loading fails.
func (h *Handlers) ReloadRules(c *gin.Context) {
	ctx := c.Request.Context()

	set, err := h.refresher.Reload(ctx)
	switch {
	case errors.Is(err, rules.ErrNoRulesPath):
		c.JSON(http.StatusConflict, gin.H{"error": "rules path not configured"})
		return
	case errors.Is(err, rules.ErrMalformedRuleData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    err.Error(),
			"revision": h.sanitizer.Rules().Revision(),
		})
		return
	case err != nil:
		h.logger.Error("Failed to reload rules", append(logFields(c), zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reloaded": true,
		"rules":    set.Stats(),
	})
}
