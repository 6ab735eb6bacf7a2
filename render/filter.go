package render

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// alwaysBlocked are resource classes never needed for extraction. Dropping
// them cuts bandwidth and shrinks the session's fingerprint surface.
var alwaysBlocked = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeStylesheet: {},
	proto.NetworkResourceTypeFont:       {},
	proto.NetworkResourceTypeMedia:      {},
}

// blockVerdict decides whether a single request should be aborted.
// Stylesheets, fonts and media are blocked unconditionally. Images are
// blocked only when cross-origin relative to the target page, which drops
// most ad and tracker pixels while keeping product imagery loading.
// Everything else, documents included, always proceeds.
func blockVerdict(resType proto.NetworkResourceType, requestHost, targetHost string) bool {
	if _, ok := alwaysBlocked[resType]; ok {
		return true
	}
	if resType == proto.NetworkResourceTypeImage {
		return !strings.EqualFold(requestHost, targetHost)
	}
	return false
}

// ApplyFilter installs the resource-acquisition policy on a page for the
// session's lifetime and returns an idempotent disposer. A classification
// error for a single request fails open: that request is allowed through
// rather than aborting the session.
func ApplyFilter(page *rod.Page, targetURL string) (func(), error) {
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, err
	}
	targetHost := target.Hostname()

	router := page.HijackRequests()
	err = router.Add("*", "", func(ctx *rod.Hijack) {
		reqURL := ctx.Request.URL()
		if reqURL == nil {
			ctx.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		if blockVerdict(ctx.Request.Type(), reqURL.Hostname(), targetHost) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}

	// router.Run() blocks until Stop is called.
	go router.Run()

	var once sync.Once
	stop := func() {
		once.Do(func() { _ = router.Stop() })
	}
	return stop, nil
}
