package interact

import (
	"fmt"
	"strconv"

	"ticketmill/domain/selector"
)

// JS expression builders. Every page-side lookup goes through resolveExpr so
// CSS and XPath candidates share one evaluation path; Go string quoting is
// valid JS string quoting, so strconv.Quote doubles as the escaper.

func jsString(s string) string {
	return strconv.Quote(s)
}

// resolveExpr yields a JS expression evaluating to the first element matched
// by sel, or null.
func resolveExpr(sel string) string {
	if selector.StrategyFor(sel) == selector.StrategyXPath {
		return fmt.Sprintf(
			"document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue",
			jsString(sel))
	}
	return fmt.Sprintf("document.querySelector(%s)", jsString(sel))
}

// resolveAllExpr yields a JS expression evaluating to an array of all
// elements matched by sel.
func resolveAllExpr(sel string) string {
	if selector.StrategyFor(sel) == selector.StrategyXPath {
		return fmt.Sprintf(`(() => {
			const r = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			const out = [];
			for (let i = 0; i < r.snapshotLength; i++) out.push(r.snapshotItem(i));
			return out;
		})()`, jsString(sel))
	}
	return fmt.Sprintf("Array.from(document.querySelectorAll(%s))", jsString(sel))
}

func presentExpr(sel string) string {
	return fmt.Sprintf("(() => { return %s !== null; })()", resolveExpr(sel))
}

func clickableExpr(sel string) string {
	return fmt.Sprintf(`(() => {
		const el = %s;
		return el !== null && el.offsetParent !== null && !el.disabled;
	})()`, resolveExpr(sel))
}

// invisibleExpr is truthy when the element is absent or hidden. Used for
// loading overlays.
func invisibleExpr(sel string) string {
	return fmt.Sprintf(`(() => {
		const el = %s;
		if (el === null) return true;
		const st = getComputedStyle(el);
		return el.offsetParent === null || st.display === 'none' || st.visibility === 'hidden';
	})()`, resolveExpr(sel))
}

func scrollIntoViewExpr(sel string) string {
	return fmt.Sprintf(`(() => {
		const el = %s;
		if (el === null) return false;
		el.scrollIntoView({block: 'center'});
		return true;
	})()`, resolveExpr(sel))
}

// scriptClickExpr dispatches a DOM click, bypassing anything overlapping the
// element.
func scriptClickExpr(sel string) string {
	return fmt.Sprintf(`(() => {
		const el = %s;
		if (el === null) return false;
		el.click();
		return true;
	})()`, resolveExpr(sel))
}

func textExpr(sel string) string {
	return fmt.Sprintf(`(() => {
		const el = %s;
		return el === null ? "" : (el.textContent || "").trim();
	})()`, resolveExpr(sel))
}

// optionTextsExpr collects the visible text of every matched element, in
// document order. Indexes align with clickIndexExpr.
func optionTextsExpr(sel string) string {
	return fmt.Sprintf("%s.map(el => (el.textContent || '').trim())", resolveAllExpr(sel))
}

func clickIndexExpr(sel string, idx int) string {
	return fmt.Sprintf(`(() => {
		const els = %s;
		if (%d >= els.length) return false;
		els[%d].scrollIntoView({block: 'center'});
		els[%d].click();
		return true;
	})()`, resolveAllExpr(sel), idx, idx, idx)
}

const readyStateExpr = "document.readyState === 'complete'"
