package htmlshot

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The scripts below are JavaScript function expressions. Every engine calls
// them with JSON-encoded arguments and awaits the returned value.

// measureScript collects the layout of the report container. Offsets are
// relative to the container's bounding box.
const measureScript = `(sel) => {
	const container = document.querySelector(sel.container);
	if (!container) throw new Error('container not found: ' + sel.container);
	const header = container.querySelector(sel.header);
	if (!header) throw new Error('header not found: ' + sel.header);
	const footer = container.querySelector(sel.footer);
	if (!footer) throw new Error('footer not found: ' + sel.footer);

	const base = container.getBoundingClientRect();
	const elements = [];
	const push = (kind, top, bottom, height) => elements.push({kind, top, bottom, height});
	// Elements without a layout box (display:none and the like) are skipped.
	const boxed = (el) => el.getClientRects().length > 0;
	const measure = (kind, el) => {
		if (!boxed(el)) return;
		const r = el.getBoundingClientRect();
		push(kind, r.top - base.top, r.bottom - base.top, r.height);
	};

	push('header', 0, header.offsetHeight, header.offsetHeight);

	const errorSection = sel.errorSection ? container.querySelector(sel.errorSection) : null;
	if (errorSection) measure('error-section', errorSection);

	container.querySelectorAll(sel.group).forEach((group) => {
		if (!boxed(group)) return;
		const groupRect = group.getBoundingClientRect();
		const groupHeader = sel.groupHeader ? group.querySelector(sel.groupHeader) : null;
		if (groupHeader && boxed(groupHeader)) {
			const r = groupHeader.getBoundingClientRect();
			push('group-header', groupRect.top - base.top, r.bottom - base.top, r.height);
		}
		group.querySelectorAll(sel.item).forEach((item) => measure('item', item));
	});

	const newSection = sel.newSection ? container.querySelector(sel.newSection) : null;
	if (newSection) measure('new-section', newSection);

	const footerRect = footer.getBoundingClientRect();
	push('footer', footerRect.top - base.top, footerRect.bottom - base.top, footer.offsetHeight);

	return {width: container.offsetWidth, height: container.offsetHeight, elements};
}`

// prepareScript scrolls to the top and paints bg behind a transparent page.
const prepareScript = `(bg) => {
	window.scrollTo(0, 0);
	const clear = (v) => v === 'transparent' || v === 'rgba(0, 0, 0, 0)';
	const root = document.documentElement;
	if (clear(getComputedStyle(root).backgroundColor) &&
		(!document.body || clear(getComputedStyle(document.body).backgroundColor))) {
		root.style.backgroundColor = bg;
	}
	return true;
}`

// waitAssetsScript resolves to true once every image and web font has
// loaded, or to false when timeoutMs elapses first.
const waitAssetsScript = `(timeoutMs) => {
	const pending = Array.from(document.images)
		.filter((img) => !img.complete)
		.map((img) => new Promise((resolve) => {
			img.addEventListener('load', resolve, {once: true});
			img.addEventListener('error', resolve, {once: true});
		}));
	if (document.fonts && document.fonts.ready) pending.push(document.fonts.ready);
	const timer = new Promise((resolve) => setTimeout(() => resolve(false), timeoutMs));
	return Promise.race([Promise.all(pending).then(() => true), timer]);
}`

// rectScript returns the page-absolute box of the first match of selector.
const rectScript = `(selector) => {
	const el = document.querySelector(selector);
	if (!el) throw new Error('element not found: ' + selector);
	const r = el.getBoundingClientRect();
	return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: el.offsetWidth, height: el.offsetHeight};
}`

// controlsScript toggles the visibility of the action controls. Visibility
// keeps the controls' box in the layout, so measured offsets stay valid.
const controlsScript = `(selector, visible) => {
	if (!selector) return 0;
	const list = document.querySelectorAll(selector);
	list.forEach((el) => { el.style.visibility = visible ? 'visible' : 'hidden'; });
	return list.length;
}`

// stageScript appends an off-screen-layered clone of the container to the
// body and returns the clone's page-absolute box.
const stageScript = `(sel, bg, id) => {
	const container = document.querySelector(sel.container);
	if (!container) throw new Error('container not found: ' + sel.container);
	const stale = document.getElementById(id);
	if (stale) stale.remove();

	const wrapper = document.createElement('div');
	wrapper.id = id;
	wrapper.style.cssText = 'position:absolute;left:0;top:0;margin:0;padding:0;' +
		'width:' + container.offsetWidth + 'px;background:' + bg + ';z-index:2147483647;';

	const clone = container.cloneNode(true);
	if (sel.controls) {
		clone.querySelectorAll(sel.controls).forEach((el) => { el.style.visibility = 'hidden'; });
	}
	wrapper.appendChild(clone);
	document.body.appendChild(wrapper);

	const r = clone.getBoundingClientRect();
	return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: clone.offsetWidth, height: clone.offsetHeight};
}`

// unstageScript removes the clone added by stageScript.
const unstageScript = `(id) => {
	const el = document.getElementById(id);
	if (el) el.remove();
	return !!el;
}`

// callExpression turns a function expression and its arguments into a
// self-invoking expression for engines that evaluate plain expressions.
func callExpression(fn string, args ...any) (string, error) {
	encoded := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("htmlshot: encoding script argument %d: %w", i, err)
		}
		encoded[i] = string(b)
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")", nil
}
