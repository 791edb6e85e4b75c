package main

import "github.com/conantteo/gitlab-pipeline-app/cmd/pipeline-dashboard/cli"

func main() {
	cli.Execute()
}
