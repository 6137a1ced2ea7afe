package main

import "errors"

var (
	errNoDictionary      = errors.New("mdictcli: no .mdx configured; pass --mdx or run with a configured dictionary directory")
	errNoResourceArchive = errors.New("mdictcli: no .mdd configured; pass --mdd")
)
