// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the objcodec tool:
// a tree of [Command] values dispatched by name, pflag flag sets built
// from tagged params structs ([FlagsFromParams]), "did you mean"
// suggestions for mistyped commands and flags, and the shared output
// helpers ([JSONOutput], [NewCommandLogger], [ExitError]).
package cli
