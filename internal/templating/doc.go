// Package templating renders the configuration tree that the admin host
// publishes to the rest of the cluster.
//
// Templates live under <base>/templates in role subtrees (admin, proxy,
// storage, common). [Engine.RunAll] fills the placeholders of a fixed
// catalog of files from the loaded configuration, rewriting each file in
// place, and finally drops the zero-byte sentinel templates/.initialized.
// Deployments refuse to start while the sentinel is absent.
//
// Placeholders are $NAME or ${NAME}. Only the names a catalog entry asks
// for are replaced; any other placeholder-looking token stays untouched.
package templating
