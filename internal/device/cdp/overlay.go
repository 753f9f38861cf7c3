package cdp

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// showRingScript draws (or moves) a fixed-position circle that ignores
// pointer events, so it can never swallow the click it marks.
const showRingScript = `(function(id, x, y, r) {
	let el = document.getElementById(id);
	if (!el) {
		el = document.createElement('div');
		el.id = id;
		(document.body || document.documentElement).appendChild(el);
	}
	el.style.cssText = 'position:fixed;pointer-events:none;z-index:2147483647;' +
		'box-sizing:border-box;border:3px solid #e53935;border-radius:50%%;' +
		'left:' + (x - r) + 'px;top:' + (y - r) + 'px;width:' + (2 * r) + 'px;height:' + (2 * r) + 'px;';
	return true;
})(%s, %s, %s, %s)`

const hideRingScript = `(function(id) {
	const el = document.getElementById(id);
	if (el) el.remove();
	return true;
})(%s)`

// ShowRing implements affordance.Overlay inside the page.
func (d *Device) ShowRing(ctx context.Context, id string, p schemas.Point, radius float64) error {
	return d.evaluate(ctx, "show ring", showRing(id, p, radius))
}

func (d *Device) HideRing(ctx context.Context, id string) error {
	return d.evaluate(ctx, "hide ring", hideRing(id))
}

// showRing renders showRingScript; literal percent signs in the template
// are doubled.
func showRing(id string, p schemas.Point, radius float64) string {
	return fmt.Sprintf(showRingScript, jsonEncode(id), jsonEncode(p.X), jsonEncode(p.Y), jsonEncode(radius))
}

func hideRing(id string) string {
	return fmt.Sprintf(hideRingScript, jsonEncode(id))
}

func (d *Device) evaluate(ctx context.Context, op, script string) error {
	var res []byte
	return d.run(ctx, op, chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithSilent(true)
	}))
}

// jsonEncode renders v as a JavaScript literal.
func jsonEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
