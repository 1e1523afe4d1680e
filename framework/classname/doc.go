// Package classname determines the fully-qualified name of the single class
// declared by a provider source file.
//
// Two strategies are tried in order. The first asks a Runtime to load the
// file and diffs the declared classes before and after. The second, used when
// the load declares nothing new (the file was loaded before, or there is no
// runtime), reads the file in chunks and lexes the growing buffer until a
// `class Name ... {` declaration is in view:
//
//	d := classname.New(classname.WithRuntime(catalog))
//	name, err := d.Discover("src/Dependencies/MailProvider.php")
//	// name == `App\Dependencies\MailProvider`
//
// A file without a class declaration fails with a *NotFoundError.
package classname
