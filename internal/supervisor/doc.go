// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package supervisor runs ReelRank's long-lived services under a suture v4
tree.

	reelrank
	├── data-layer
	│   ├── behavior-retention   (event eviction + idle session sweep)
	│   ├── similarity-index     (periodic rebuild, when enabled)
	│   └── feedback-retention
	├── messaging-layer
	│   └── feedback-consumer    (watermill router)
	└── api-layer
	    └── http-server

Crashed services are restarted with suture's backoff. Each layer counts
failures on its own. Supervisor events are logged through sutureslog into
the zerolog-backed slog handler from the logging package.

The service wrappers live in the services subpackage.
*/
package supervisor
