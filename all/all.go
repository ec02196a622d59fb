// Package all imports all upstream checkers.
//
// Import this package for its side effects to register every checker type:
//
//	import (
//		findupdate "github.com/AOSC-Dev/aosc-findupdate"
//		_ "github.com/AOSC-Dev/aosc-findupdate/all"
//	)
//
//	types := findupdate.SupportedTypes()
//	// ["anitya", "git", "github", "gitlab", "gitweb", "html"]
package all

import (
	_ "github.com/AOSC-Dev/aosc-findupdate/internal/anitya"
	_ "github.com/AOSC-Dev/aosc-findupdate/internal/git"
	_ "github.com/AOSC-Dev/aosc-findupdate/internal/github"
	_ "github.com/AOSC-Dev/aosc-findupdate/internal/gitlab"
	_ "github.com/AOSC-Dev/aosc-findupdate/internal/gitweb"
	_ "github.com/AOSC-Dev/aosc-findupdate/internal/html"
)
