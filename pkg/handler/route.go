package handler

// Route type
type Route string

const (
	// RouteGetDocument get the current document
	RouteGetDocument Route = "getDocument"
	// RouteListVersions list all snapshot keys, newest first
	RouteListVersions Route = "listVersions"
	// RoutePreviewVersion load one specific snapshot for display
	RoutePreviewVersion Route = "previewVersion"
	// RouteSelectPrompt get the text of one prompt
	RouteSelectPrompt Route = "selectPrompt"
	// RouteEditPrompt apply a prompt edit and get a candidate back
	RouteEditPrompt Route = "editPrompt"
	// RouteReplaceRaw replace the whole document with raw JSON
	RouteReplaceRaw Route = "replaceRaw"
	// RoutePublish commit a candidate as a new snapshot
	RoutePublish Route = "publish"
	// RouteReload drop cache and session state and load fresh
	RouteReload Route = "reload"
)
