package main

import "github.com/sellerops/wbsync/cmd"

func main() {
	cmd.Execute()
}
