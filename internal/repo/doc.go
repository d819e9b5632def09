// Package repo implements the branch-versioned object store: the repository
// config document, the branch lifecycle, categorized object writes, the
// per-branch meta index and checkpoint archival.
//
// A Repo is an explicit handle bound to one repository root. All state is
// read from and written to whole JSON documents; there is no locking, so
// callers must serialize access to a repository themselves.
//
// Layout below the repository directory (.aim):
//
//	config.json
//	logs/
//	<branch>/objects/
//	    metrics/<name>
//	    media/images/<name>
//	    annotations/<name>
//	    models/<checkpoint>/model
//	    models/<checkpoint>/model.json
//	    models/<checkpoint>.aim
//	    correlation/<name>
//	    meta.json
package repo
