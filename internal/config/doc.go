// Package config provides configuration parsing for the cachestore command.
//
// The configuration is stored in cachestore.json in the working directory or
// one of its parents. This package handles loading, saving, and validating
// configuration. Command-line flags override file values.
//
// # Configuration File Structure
//
//	{
//	  "devtools": {
//	    "enabled": true,
//	    "host": "localhost",
//	    "port": 7331
//	  },
//	  "metrics": {
//	    "namespace": "cachestore",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "cachestore"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "gallery": {
//	    "postsURL": "https://jsonplaceholder.typicode.com/posts",
//	    "imagesURL": "https://picsum.photos",
//	    "timeout": "10s"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Devtools:", cfg.DevtoolsURL())
package config
