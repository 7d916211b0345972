// Package report classifies a directory of node records and summarises it:
// how many nodes are built in, LangChain or community, which are AI
// related, tools or triggers, and how the LangChain nodes break down.
package report
