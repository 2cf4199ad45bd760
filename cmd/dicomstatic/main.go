// Command dicomstatic generates, serves, and publishes a static DICOMweb
// artifact tree: ingest part-10 files into the hierarchy, run the HTTP
// retrieval API over it, or mirror the tree to object storage.
package main

func main() {
	Execute()
}
