// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements Guardian's command-line interface using Cobra. It
// loads configuration, opens the vault and the audit log on demand and
// delegates all behavior to the manifest, importer, backup and poller
// packages.
package cli
