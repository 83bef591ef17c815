package chart

import "encoding/json"

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// jsClickByText clicks the first clickable element whose visible text
// contains the given text (case-insensitive). Evaluates to true when an
// element was found and clicked.
func jsClickByText(text string) string {
	return `(function(){
	var needle = ` + jsString(text) + `.toLowerCase();
	var nodes = document.querySelectorAll('button, a, [role="button"], [type="submit"]');
	for (var i = 0; i < nodes.length; i++) {
		var t = (nodes[i].textContent || '').trim().toLowerCase();
		if (t.indexOf(needle) !== -1) {
			nodes[i].click();
			return true;
		}
	}
	return false;
})()`
}

// jsHideUI suppresses chrome around the chart surface: header panel, side
// toolbar, watermark, legend container, and any open modal/popup/dialog.
// Visual-only; nothing is removed from the document.
func jsHideUI() string {
	return `(function(){
	var hide = [
		'[class*="header-chart-panel"]',
		'[class*="headerWrapper"]',
		'[class*="toolbar"]',
		'[class*="drawingToolbar"]',
		'[class*="watermark"]',
		'[class*="legend"]',
		'[data-dialog-name]',
		'[role="dialog"]',
		'[class*="popup"]',
		'[class*="modal"]',
		'[class*="overlap-manager"]'
	];
	var hidden = 0;
	for (var i = 0; i < hide.length; i++) {
		var nodes = document.querySelectorAll(hide[i]);
		for (var j = 0; j < nodes.length; j++) {
			nodes[j].style.display = 'none';
			nodes[j].style.opacity = '0';
			hidden++;
		}
	}
	return hidden;
})()`
}
