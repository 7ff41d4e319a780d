// Package theme persists the UI theme selection.
//
// The selection lives in a small JSON file:
//
//	{
//	    "theme": "dark",
//	    "themes": {
//	        "dark": "/static/style.css",
//	        "bright": "/static/bright_style.css"
//	    }
//	}
//
// The file is created with these defaults when missing and reset to them
// when it cannot be parsed. Store.Watch picks up edits made outside the
// process.
package theme
